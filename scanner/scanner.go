// Package scanner turns Kis source text into tokens. It tracks string
// literal boundaries and escape sequences byte by byte and records every
// token's position in a modernc.org/token File.
package scanner

import (
	"fmt"
	"strings"

	"modernc.org/token"
)

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Keyword
	Int
	Float
	String
	Op
)

var kindNames = [...]string{
	EOF:     "end of input",
	Ident:   "identifier",
	Keyword: "keyword",
	Int:     "integer",
	Float:   "float",
	String:  "string",
	Op:      "operator",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexeme.
type Token struct {
	Kind Kind
	// Text is the source text, or for strings the decoded value.
	Text string
	Pos  token.Pos
	// NewlineBefore is set when a line break separates this token from
	// the previous one.
	NewlineBefore bool
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case String:
		return fmt.Sprintf("%q", t.Text)
	}
	return t.Text
}

// Is reports whether t is the keyword or operator text.
func (t Token) Is(text string) bool {
	return (t.Kind == Keyword || t.Kind == Op) && t.Text == text
}

var keywords = map[string]bool{
	"set": true, "stay": true, "reset": true, "meow": true, "pounce": true,
	"if": true, "else": true, "nap": true, "whisker": true, "fur": true,
	"in": true, "kitty": true, "breed": true, "purr": true, "break": true,
	"import": true, "true": true, "false": true, "some": true, "no": true,
	"of": true,
}

// IsKeyword reports whether name is reserved.
func IsKeyword(name string) bool { return keywords[name] }

// Longest operators first so that "**" wins over "*".
var operators = []string{
	"**", "??", "||", "&&", "<=", ">=", "==", "!=", "++", "--", "->",
	"+", "-", "*", "/", "%", "<", ">", "!", "=", "?", ":",
	"(", ")", "[", "]", ",", ".",
}

// Error is a lexical error at a source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string { return e.Msg }

// Scanner iterates over source text producing tokens.
type Scanner struct {
	file *token.File
	src  string
	pos  int
}

// New creates a Scanner for src. The file must have been created with
// len(src) as its size.
func New(file *token.File, src []byte) *Scanner {
	return &Scanner{file: file, src: string(src)}
}

// NewFile returns a token.File for src with line information set.
func NewFile(name string, src []byte) *token.File {
	f := token.NewFile(name, len(src))
	f.SetLinesForContent(src)
	return f
}

// Tokenize scans all of src. The returned slice always ends with an EOF token.
func Tokenize(file *token.File, src []byte) ([]Token, error) {
	s := New(file, src)
	var toks []Token
	for {
		tok, err := s.Scan()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

func (s *Scanner) peek(n int) byte {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

func (s *Scanner) lookingAt(prefix string) bool {
	return strings.HasPrefix(s.src[s.pos:], prefix)
}

func (s *Scanner) errorf(offset int, format string, args ...interface{}) error {
	return &Error{Pos: s.file.Pos(offset), Msg: fmt.Sprintf(format, args...)}
}

// skipSpace skips blanks and // comments and reports whether a newline was
// crossed.
func (s *Scanner) skipSpace() bool {
	newline := false
	for s.pos < len(s.src) {
		switch ch := s.src[s.pos]; {
		case ch == '\n':
			newline = true
			s.pos++
		case ch == ' ' || ch == '\t' || ch == '\r':
			s.pos++
		case s.lookingAt("//"):
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		default:
			return newline
		}
	}
	return newline
}

// Scan returns the next token.
func (s *Scanner) Scan() (Token, error) {
	newline := s.skipSpace()
	start := s.pos
	tok := Token{Pos: s.file.Pos(start), NewlineBefore: newline}
	if s.pos >= len(s.src) {
		tok.Kind = EOF
		return tok, nil
	}
	ch := s.src[s.pos]
	switch {
	case isLetter(ch):
		for s.pos < len(s.src) && (isLetter(s.src[s.pos]) || isDigit(s.src[s.pos])) {
			s.pos++
		}
		tok.Text = s.src[start:s.pos]
		tok.Kind = Ident
		if keywords[tok.Text] {
			tok.Kind = Keyword
		}
		return tok, nil
	case isDigit(ch):
		return s.number(tok)
	case ch == '"':
		return s.str(tok)
	}
	for _, op := range operators {
		if s.lookingAt(op) {
			s.pos += len(op)
			tok.Kind = Op
			tok.Text = op
			return tok, nil
		}
	}
	return tok, s.errorf(start, "Unexpected character %q", ch)
}

func (s *Scanner) number(tok Token) (Token, error) {
	start := s.pos
	tok.Kind = Int
	for isDigit(s.peek(0)) {
		s.pos++
	}
	if s.peek(0) == '.' && isDigit(s.peek(1)) {
		tok.Kind = Float
		s.pos++
		for isDigit(s.peek(0)) {
			s.pos++
		}
	}
	if c := s.peek(0); c == 'e' || c == 'E' {
		n := 1
		if sign := s.peek(1); sign == '+' || sign == '-' {
			n = 2
		}
		if isDigit(s.peek(n)) {
			tok.Kind = Float
			s.pos += n
			for isDigit(s.peek(0)) {
				s.pos++
			}
		}
	}
	if isLetter(s.peek(0)) {
		return tok, s.errorf(s.pos, "Malformed number")
	}
	tok.Text = s.src[start:s.pos]
	return tok, nil
}

// str scans a double-quoted string, decoding escapes into tok.Text.
func (s *Scanner) str(tok Token) (Token, error) {
	start := s.pos
	s.pos++ // opening quote
	var sb strings.Builder
	escaped := false
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		s.pos++
		if escaped {
			escaped = false
			switch ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"', '\\':
				sb.WriteByte(ch)
			default:
				return tok, s.errorf(s.pos-2, "Unknown escape sequence \\%c", ch)
			}
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case '"':
			tok.Kind = String
			tok.Text = sb.String()
			return tok, nil
		case '\n':
			return tok, s.errorf(start, "Unterminated string")
		default:
			sb.WriteByte(ch)
		}
	}
	return tok, s.errorf(start, "Unterminated string")
}

func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }
