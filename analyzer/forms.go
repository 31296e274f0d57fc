// Copyright © 2024 The ELPS authors

package analyzer

import (
	"github.com/luthersystems/elpsc/syntax"
)

// Form identifies a special form.
type Form uint8

// Special forms.
const (
	FormNone Form = iota
	FormDef
	FormNs
	FormFn
	FormQuote
	FormDo
	FormIf
	FormApply
	FormLet
	FormLoop
	FormRecur
	FormTry
	FormThrow
	FormForeach
	FormDefStruct
	FormHostNew
	FormHostObject
	FormHostStatic
	FormHostAGet
	FormHostASet
	FormHostAPush
	FormHostAUnset
	numForms
)

var formNames = [numForms]string{
	FormNone:       "",
	FormDef:        "def",
	FormNs:         "ns",
	FormFn:         "fn",
	FormQuote:      "quote",
	FormDo:         "do",
	FormIf:         "if",
	FormApply:      "apply",
	FormLet:        "let",
	FormLoop:       "loop",
	FormRecur:      "recur",
	FormTry:        "try",
	FormThrow:      "throw",
	FormForeach:    "foreach",
	FormDefStruct:  "defstruct",
	FormHostNew:    "host/new",
	FormHostObject: "host/->",
	FormHostStatic: "host/::",
	FormHostAGet:   "host/aget",
	FormHostASet:   "host/aset",
	FormHostAPush:  "host/apush",
	FormHostAUnset: "host/aunset",
}

var formsByName = func() map[string]Form {
	m := make(map[string]Form, numForms)
	for f := FormNone + 1; f < numForms; f++ {
		m[formNames[f]] = f
	}
	return m
}()

func (f Form) String() string {
	if f >= numForms || f == FormNone {
		return "none"
	}
	return formNames[f]
}

// FormOf returns the special form named by sym, or FormNone.
func FormOf(sym *syntax.Symbol) Form {
	return formsByName[sym.FullName()]
}

// Forms returns every special form in declaration order.
func Forms() []Form {
	forms := make([]Form, 0, numForms-1)
	for f := FormNone + 1; f < numForms; f++ {
		forms = append(forms, f)
	}
	return forms
}

// FormDoc describes the shape of a special form.
type FormDoc struct {
	Usage string
	Doc   string
}

var formDocs = [numForms]FormDoc{
	FormDef: {"(def name [doc-or-meta] init)",
		`Defines a global binding in the current namespace.  The binding is
		visible to init.  A meta map containing :macro true declares a macro.`},
	FormNs: {"(ns name (:require ns :as alias :refer [sym ...]) (:use Class :as alias) ...)",
		`Sets the current namespace and declares its dependencies.`},
	FormFn: {"(fn [params ...] body ...)",
		`Creates a function.  Parameters may be destructuring patterns and the
		parameter following & receives the remaining arguments.  The body may
		recur to the function head.`},
	FormQuote: {"(quote form)",
		`Returns form without evaluating it.`},
	FormDo: {"(do form ...)",
		`Evaluates forms in order and returns the value of the last one.`},
	FormIf: {"(if test then [else])",
		`Evaluates then when test is truthy and else otherwise.  A missing
		else evaluates to nil.`},
	FormApply: {"(apply f arg ... coll)",
		`Calls f with the arguments followed by the elements of coll.`},
	FormLet: {"(let [pattern init ...] body ...)",
		`Binds each pattern to the value of its init in order.  Each init sees
		the bindings before it.`},
	FormLoop: {"(loop [pattern init ...] body ...)",
		`Like let but the body may recur to the loop head with new values for
		the bindings.`},
	FormRecur: {"(recur arg ...)",
		`Jumps to the head of the enclosing loop or function.  Only legal in
		tail position and with one argument per binding.`},
	FormTry: {"(try body ... (catch Class e body ...) ... (finally body ...))",
		`Evaluates body handling host exceptions.`},
	FormThrow: {"(throw exception)",
		`Raises a host exception.`},
	FormForeach: {"(foreach [[key] value coll] body ...)",
		`Evaluates body for each element of coll for effect.`},
	FormDefStruct: {"(defstruct name [field ...])",
		`Declares a struct type with named fields.`},
	FormHostNew: {"(host/new Class arg ...)",
		`Instantiates a host class.`},
	FormHostObject: {"(host/-> object property-or-(method arg ...))",
		`Reads a property or calls a method of a host object.`},
	FormHostStatic: {"(host/:: Class constant-or-(method arg ...))",
		`Reads a constant or calls a static method of a host class.`},
	FormHostAGet: {"(host/aget array index)",
		`Returns an element of a host array.`},
	FormHostASet: {"(host/aset array index value)",
		`Sets an element of a host array.`},
	FormHostAPush: {"(host/apush array value)",
		`Appends value to a host array.`},
	FormHostAUnset: {"(host/aunset array index)",
		`Removes an element of a host array.`},
}

// Doc returns the documentation of f.
func (f Form) Doc() FormDoc {
	if f >= numForms {
		return FormDoc{}
	}
	return formDocs[f]
}
