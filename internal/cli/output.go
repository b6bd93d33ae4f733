package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	colorRed   = color.New(color.FgRed)
	colorGreen = color.New(color.FgGreen)
	colorBlue  = color.New(color.FgBlue)
	colorGray  = color.New(color.FgHiBlack)
)

const indent = "  "

type printer struct {
	out io.Writer
}

func (p printer) infof(msg string, v ...any) {
	fmt.Fprintf(p.out, "%s%s %s\n", indent, colorBlue.Sprint("•"), fmt.Sprintf(msg, v...))
}

func (p printer) successf(msg string, v ...any) {
	fmt.Fprintf(p.out, "%s%s %s\n", indent, colorGreen.Sprint("✔"), fmt.Sprintf(msg, v...))
}

func (p printer) errorf(msg string, v ...any) {
	fmt.Fprintf(p.out, "%s%s %s\n", indent, colorRed.Sprint("⨯"), fmt.Sprintf(msg, v...))
}

// row prints an aligned key/value line.
func (p printer) row(key string, value any) {
	fmt.Fprintf(p.out, "%s%-18s %v\n", indent, colorGray.Sprint(key+":"), value)
}

func (p printer) plainf(msg string, v ...any) {
	fmt.Fprintf(p.out, "%s%s\n", indent, fmt.Sprintf(msg, v...))
}
