// Package utils provides utility functions for the application.
package utils

import (
	"strings"
)

// RenderTemplate substitutes {{marker}} occurrences in content with the
// matching variable value. A variable present with an empty value erases its
// markers; markers with no matching variable are left in place untouched.
func RenderTemplate(content string, variables map[string]string) string {
	if content == "" || len(variables) == 0 {
		return content
	}

	rendered := content
	for name, value := range variables {
		rendered = strings.ReplaceAll(rendered, "{{"+name+"}}", value)
	}

	return rendered
}

// MergeVariables overlays maps left to right; later maps win on key collisions.
func MergeVariables(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
