package server

// ANSI colours for the route table printed at startup in DEV
const (
	colourGreen = "\033[32m"
	colourBlue  = "\033[34m"
	colourGray  = "\033[90m"
	colourReset = "\033[0m"
)

// methodColours covers the methods the auth routes use; anything else
// (including method-less catch-alls) prints gray
var methodColours = map[string]string{
	"GET":     colourGreen,
	"POST":    colourBlue,
	"OPTIONS": colourGray,
}
