package render

// Theme holds colors for the HTML reference page.
type Theme struct {
	Background string
	TextColor  string
	Link       string
	Rule       string

	// Code blocks.
	CodeFill   string
	CodeBorder string
	CodeText   string

	// Table of contents.
	TOCFill string
}

// NASA is the NASA/Bauhaus theme: geometric, monochrome, sparse color.
var NASA = Theme{
	Background: "#F5F5F5",
	TextColor:  "#1A1A1A",
	Link:       "#0B3D91", // NASA blue
	Rule:       "#BDBDBD",

	CodeFill:   "white",
	CodeBorder: "#1A1A1A",
	CodeText:   "#00695C", // teal

	TOCFill: "#ECEFF1", // blue-gray 50
}
