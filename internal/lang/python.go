package lang

import (
	"github.com/smacker/go-tree-sitter/python"
)

// PythonName is the registry key of the Python grammar.
const PythonName = "python"

func init() {
	Languages[PythonName] = &Language{
		Name:       PythonName,
		Extensions: []string{".py", ".pyi"},
		lang:       python.GetLanguage(),
	}
}

// Python returns the registered Python language.
func Python() *Language {
	return Languages[PythonName]
}
