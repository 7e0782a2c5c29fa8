//Package chemjson implements the JSON-lines protocol between goMin
//and the programs that use it, typically a plugin in the visualization program.
//The calling program sends a line with the Options (including which command to run and
//its arguments), then each molecule as one line per atom, each followed by a line
//with its coordinates, optionally a line with the bonds, and one line per atom
//for each additional state. goMin answers with the minimized molecules,
//in the same format, and an Info line, or with an Error line.
package chemjson
