// Package parsers turns imported files into plain text.
//
// Each format lives in its own subpackage. Registry dispatches on the file
// extension and is the driven.DocumentParser the workbench is wired with.
package parsers
