package script

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s]+`},
	{Name: "Duration", Pattern: `([0-9]+(ns|us|ms|s|m|h))+`},
	{Name: "Int", Pattern: `[0-9][0-9_]*`},
	{Name: "Keyword", Pattern: `[a-zA-Z]+`},
	{Name: "Punct", Pattern: `[{}]`},
})

type Parser struct {
	parser *participle.Parser[Script]
}

func NewParser() (*Parser, error) {
	parser, err := participle.Build[Script](
		participle.Lexer(scriptLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build script parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

func (p *Parser) Parse(filename string, r io.Reader) (*Script, error) {
	script, err := p.parser.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return script, nil
}

func (p *Parser) ParseString(input string) (*Script, error) {
	script, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return script, nil
}

func (p *Parser) ParseFile(filename string) (*Script, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer file.Close()
	return p.Parse(filename, file)
}
