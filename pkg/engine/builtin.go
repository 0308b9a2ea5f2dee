package engine

import (
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/specvital/grammarsnap/pkg/domain"
)

// Built-in language ids.
const (
	LanguageCSS        domain.LanguageID = "css"
	LanguageGo         domain.LanguageID = "go"
	LanguageJavaScript domain.LanguageID = "javascript"
	LanguageMarkup     domain.LanguageID = "markup"
	LanguagePython     domain.LanguageID = "python"
)

const cssHighlights = `
(comment) @comment
(tag_name) @selector
(class_name) @class_name
(id_name) @id
(property_name) @property
(string_value) @string
[(integer_value) (float_value)] @number
(unit) @unit
(color_value) @hexcode
(plain_value) @value
(important) @important
["{" "}" ":" ";"] @punctuation
`

const goHighlights = `
(comment) @comment
[(interpreted_string_literal) (raw_string_literal) (rune_literal)] @string
[(int_literal) (float_literal) (imaginary_literal)] @number
[(true) (false)] @boolean
(nil) @constant
[
  "package" "import" "func" "return" "if" "else" "for" "range"
  "var" "const" "type" "struct" "interface" "map" "chan"
  "go" "defer" "switch" "case" "default" "break" "continue"
] @keyword
(type_identifier) @class_name
(call_expression function: (identifier) @function)
`

const javascriptHighlights = `
(comment) @comment
(string) @string
(template_string) @template_string
(regex) @regex
(number) @number
[(true) (false)] @boolean
(null) @keyword
[
  "const" "let" "var" "function" "return" "if" "else" "for" "while"
  "new" "class" "import" "export" "from"
] @keyword
(property_identifier) @property
(call_expression function: (identifier) @function)
`

const markupHighlights = `
(comment) @comment
(doctype) @doctype
(tag_name) @tag
(attribute_name) @attr_name
[(attribute_value) (quoted_attribute_value)] @attr_value
["<" ">" "</" "/>"] @punctuation
`

const pythonHighlights = `
(comment) @comment
(string) @string
[(integer) (float)] @number
[(true) (false)] @boolean
(none) @constant
[
  "def" "class" "return" "if" "elif" "else" "for" "in" "while"
  "import" "from" "as" "pass" "lambda" "with"
] @keyword
(decorator) @decorator
(function_definition name: (identifier) @function)
`

func builtinGrammars() []*Grammar {
	cssGrammar := NewGrammar(LanguageCSS, "CSS", css.GetLanguage, cssHighlights)

	goGrammar := NewGrammar(LanguageGo, "Go", golang.GetLanguage, goHighlights)
	goGrammar.Aliases = []domain.LanguageID{"golang"}

	jsGrammar := NewGrammar(LanguageJavaScript, "JavaScript", javascript.GetLanguage, javascriptHighlights)
	jsGrammar.Aliases = []domain.LanguageID{"js"}

	markupGrammar := NewGrammar(LanguageMarkup, "Markup", html.GetLanguage, markupHighlights)
	markupGrammar.Aliases = []domain.LanguageID{"html"}
	markupGrammar.Injections = []Injection{
		{Parent: "style_element", Node: "raw_text", Language: LanguageCSS},
		{Parent: "script_element", Node: "raw_text", Language: LanguageJavaScript},
	}

	pyGrammar := NewGrammar(LanguagePython, "Python", python.GetLanguage, pythonHighlights)
	pyGrammar.Aliases = []domain.LanguageID{"py"}

	return []*Grammar{cssGrammar, goGrammar, jsGrammar, markupGrammar, pyGrammar}
}
