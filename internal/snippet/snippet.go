// Package snippet provides the starter code loaded into an editor buffer when
// a room is created or its language changes.
package snippet

import (
	"sort"
)

// Provider maps a language to its starter code.
type Provider interface {
	Snippet(language string) string
}

// Func adapts a plain function to Provider.
type Func func(language string) string

func (f Func) Snippet(language string) string { return f(language) }

type catalog map[string]string

// Default returns the built-in catalog.
func Default() Provider { return builtin }

// Languages lists the languages that have a dedicated snippet.
func Languages() []string {
	langs := make([]string, 0, len(builtin))
	for lang := range builtin {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func (c catalog) Snippet(language string) string {
	if code, ok := c[language]; ok {
		return code
	}
	return "// Welcome to CodeCollab!\n// Language: " + language
}

var builtin = catalog{
	"javascript": `// Welcome to CodeCollab!
// Write your JavaScript code here

function greet(name) {
  return ` + "`Hello, ${name}!`" + `;
}

console.log(greet("World"));

// Try running this code!`,

	"python": `# Welcome to CodeCollab!
# Write your Python code here

def greet(name):
    return f"Hello, {name}!"

print(greet("World"))

# Try running this code!`,

	"html": `<!DOCTYPE html>
<html>
<head>
  <title>Welcome to CodeCollab!</title>
</head>
<body>
  <h1>Hello, World!</h1>
  <p>Write your HTML code here</p>
</body>
</html>`,

	"css": `/* Welcome to CodeCollab! */
/* Write your CSS code here */
body {
  font-family: Arial, sans-serif;
  margin: 0;
  padding: 20px;
}
.container {
  max-width: 800px;
  margin: 0 auto;
}`,

	"java": `// Welcome to CodeCollab!
// Write your Java code here
public class Main {
  public static void main(String[] args) {
    System.out.println("Hello, World!");
  }
}`,

	"cpp": `// Welcome to CodeCollab!
// Write your C++ code here
#include <iostream>
using namespace std;

int main() {
  cout << "Hello, World!" << endl;
  return 0;
}`,
}
