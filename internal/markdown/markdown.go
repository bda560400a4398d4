// Package markdown defines the converter boundary for article bodies. The
// engine treats conversion as an external collaborator: hosts plug in a
// real renderer, and the passthrough default keeps headless runs working.
package markdown

// Converter turns a markdown document into presentable output.
type Converter interface {
	Convert(markdown string) string
}

// Passthrough returns the source unchanged. It is the default converter for
// headless runs, where no presentation layer consumes HTML.
type Passthrough struct{}

func (Passthrough) Convert(markdown string) string { return markdown }

// Func adapts a plain function into a Converter.
type Func func(string) string

func (f Func) Convert(markdown string) string { return f(markdown) }
