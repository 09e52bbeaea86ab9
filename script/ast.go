package script

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Script is a list of statements, for example:
//
//	# Count up on the first four outputs
//	clear
//	duty 0
//	repeat 3 {
//	    int 12
//	    sleep 200ms
//	    bits 1 0 1
//	    bits 1010_0000
//	    bool true
//	}
type Script struct {
	Statements []*Statement `@@*`
}

type Statement struct {
	Pos lexer.Position

	Bits   []string `(  "bits" @Int+`
	Int    *int     ` | "int" @Int`
	Bool   *string  ` | "bool" @("true" | "false")`
	Duty   *int     ` | "duty" @Int`
	Clear  bool     ` | @"clear"`
	Sleep  *string  ` | "sleep" @Duration`
	Repeat *Repeat  ` | @@ )`
}

type Repeat struct {
	Count      int          `"repeat" @Int "{"`
	Statements []*Statement `@@* "}"`
}
