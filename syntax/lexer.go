package syntax

import (
	"bufio"
	"strings"
	"unicode"

	"github.com/otterlang/otterc/report"
)

// Lexer tokenizes a single source file, synthesizing INDENT/DEDENT/NEWLINE
// layout tokens from indentation per spec.md §4.A. It follows the teacher's
// rune-scanner idiom (bootstrap/syntax/lexer.go): peek/eat/skip primitives
// over a bufio.Reader with a strings.Builder token-text buffer; the layout
// stack is authored fresh since the teacher's grammar is brace-delimited.
type Lexer struct {
	file    string
	r       *bufio.Reader
	tokBuff *strings.Builder
	sink    *report.Sink

	line, col           int
	startLine, startCol int

	indentStack []int
	bracketDepth int
	atBOL        bool // positioned at the start of a logical line
	expectIndent bool // previous significant token was a header-colon at EOL
	atEOF        bool

	pending []*Token
}

// NewLexer creates a lexer for the named file, reading from r.
func NewLexer(file string, r *bufio.Reader, sink *report.Sink) *Lexer {
	return &Lexer{
		file:        file,
		r:           r,
		tokBuff:     &strings.Builder{},
		sink:        sink,
		indentStack: []int{0},
		atBOL:       true,
	}
}

// newEmbeddedLexer creates a lexer over an f-string embedded-expression
// fragment, seeded at start's position so diagnostics point at the right
// place in the enclosing source file. Embedded expressions never carry
// their own layout, so indentation tracking starts and stays flat.
func newEmbeddedLexer(file, src string, start report.Span, sink *report.Sink) *Lexer {
	l := NewLexer(file, bufio.NewReader(strings.NewReader(src)), sink)
	l.line, l.col = start.StartLine, start.StartCol
	l.atBOL = false
	l.bracketDepth = 1 // suppress layout tokens entirely within the fragment
	return l
}

// NextToken returns the next token, including any synthetic layout tokens.
// It never fails fatally: lex errors are recorded in the sink and lexing
// resynchronizes at the next newline, per spec.md §4.A's failure modes.
func (l *Lexer) NextToken() *Token {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t
	}

	if l.atEOF {
		return &Token{Kind: TOK_EOF, Span: l.getSpan()}
	}

	if l.atBOL && l.bracketDepth == 0 {
		l.handleLineStart()
		// Only the file's first line is measured here (later lines are
		// measured from scanToken); it has no earlier line to be separated
		// from, so it opens with no NEWLINE and an empty file lexes to EOF.
		if len(l.pending) > 0 && l.pending[0].Kind == TOK_NEWLINE {
			l.pending = l.pending[1:]
		}
		if len(l.pending) > 0 {
			t := l.pending[0]
			l.pending = l.pending[1:]
			return t
		}
	}

	return l.scanToken()
}

// noteSignificant records whether the token the lexer just produced was a
// header colon (`:`), so the next logical line is expected to indent.
func (l *Lexer) noteSignificant(kind Kind) {
	l.expectIndent = kind == TOK_COLON
}

// -----------------------------------------------------------------------------
// Layout

// handleLineStart measures leading indentation, skips blank/comment-only
// lines, and queues INDENT/DEDENT/NEWLINE tokens per the algorithm in
// spec.md §4.A.
func (l *Lexer) handleLineStart() {
	for {
		count, blank, hadErr := l.measureIndent()
		if hadErr {
			l.syncToNewline()
			continue
		}

		if blank {
			// Blank or comment-only lines never affect indentation (boundary
			// case: trailing whitespace-only lines do not dedent).
			c, _ := l.peek()
			if c == -1 {
				l.closeOutAtEOF()
				return
			}
			continue
		}

		l.layoutTransition(count)
		l.atBOL = false
		return
	}
}

// measureIndent consumes leading spaces on the current line, returning the
// count, whether the line is blank/comment-only, and a lex error if a tab
// was found in leading whitespace.
func (l *Lexer) measureIndent() (count int, blank bool, hadErr bool) {
	l.mark()

	for {
		c, perr := l.peek()
		if perr != nil || c == -1 {
			return count, true, false
		}

		switch c {
		case ' ':
			l.skip()
			count++
		case '\t':
			l.skip()
			l.report(report.CodeLayoutError, "tabs are not permitted in leading whitespace")
			return count, false, true
		case '\n':
			l.skip()
			return count, true, false
		case '\r':
			l.skip()
		case '#':
			for {
				c, _ := l.peek()
				if c == -1 || c == '\n' {
					break
				}
				l.skip()
			}
			return count, true, false
		default:
			return count, false, false
		}
	}
}

// layoutTransition applies the indentation-stack algorithm for a logical
// line whose leading-space count is c, queuing the resulting tokens.
func (l *Lexer) layoutTransition(c int) {
	top := l.indentStack[len(l.indentStack)-1]

	if l.expectIndent {
		l.expectIndent = false

		if c <= top {
			l.report(report.CodeLayoutError, "expected an indent after `:`")
			return
		}

		l.indentStack = append(l.indentStack, c)
		l.queueLayout(TOK_INDENT)
		return
	}

	switch {
	case c == top:
		l.queueLayout(TOK_NEWLINE)
	case c > top:
		l.report(report.CodeLayoutError, "unexpected indent")
	default:
		for len(l.indentStack) > 1 && l.indentStack[len(l.indentStack)-1] > c {
			l.indentStack = l.indentStack[:len(l.indentStack)-1]
			l.queueLayout(TOK_DEDENT)
		}

		if l.indentStack[len(l.indentStack)-1] != c {
			l.report(report.CodeLayoutError, "inconsistent dedent: no matching indentation level")
		}
	}
}

func (l *Lexer) queueLayout(kind Kind) {
	l.pending = append(l.pending, &Token{Kind: kind, Span: l.getSpan()})
}

// closeOutAtEOF unwinds the indentation stack and marks the lexer as done.
func (l *Lexer) closeOutAtEOF() {
	l.queueLayout(TOK_NEWLINE)

	for len(l.indentStack) > 1 {
		l.indentStack = l.indentStack[:len(l.indentStack)-1]
		l.queueLayout(TOK_DEDENT)
	}

	l.pending = append(l.pending, &Token{Kind: TOK_EOF, Span: l.getSpan()})
	l.atEOF = true
}

// syncToNewline discards runes until the next newline, the lexer's resync
// point after a recoverable lex/layout error.
func (l *Lexer) syncToNewline() {
	for {
		c, err := l.skip()
		if err != nil || c == -1 || c == '\n' {
			return
		}
	}
}

// -----------------------------------------------------------------------------
// Token scanning (non-layout)

func (l *Lexer) scanToken() *Token {
	for {
		c, err := l.peek()
		if err != nil || c == -1 {
			l.closeOutAtEOF()
			t := l.pending[0]
			l.pending = l.pending[1:]
			return t
		}

		switch {
		case c == '\n':
			l.skip()
			if l.bracketDepth == 0 {
				l.atBOL = true
				l.handleLineStart()
				if len(l.pending) > 0 {
					t := l.pending[0]
					l.pending = l.pending[1:]
					return t
				}
				continue
			}
		case c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f':
			l.skip()
		case c == '#':
			for {
				c, _ := l.peek()
				if c == -1 || c == '\n' {
					break
				}
				l.skip()
			}
		case c == '\'' || c == '"':
			return l.lexString(c, false)
		case c == 'f' && l.peekIsFStringStart():
			l.skip() // consume 'f'
			quote, _ := l.peek()
			return l.lexString(quote, true)
		case isDecimalDigit(c):
			return l.lexNumber()
		case isIdentStart(c):
			return l.lexIdentOrKeyword()
		default:
			return l.lexOperator()
		}
	}
}

func (l *Lexer) peekIsFStringStart() bool {
	// requires 'f' immediately followed by a quote; peek2 not exposed by the
	// base reader API so re-use eat/unread via a small lookahead buffer.
	c, err := l.r.Peek(2)
	if err != nil || len(c) < 2 {
		return false
	}
	return c[0] == 'f' && (c[1] == '"' || c[1] == '\'')
}

// -----------------------------------------------------------------------------
// Identifiers & keywords

func (l *Lexer) lexIdentOrKeyword() *Token {
	l.mark()
	l.eat()

	for {
		c, err := l.peek()
		if err != nil || c == -1 || !(isIdentPart(c)) {
			break
		}
		l.eat()
	}

	text := l.tokBuff.String()
	kind := TOK_IDENT
	if kw, ok := keywords[text]; ok {
		kind = kw
	}

	tok := l.makeToken(kind)
	l.noteSignificant(kind)
	return tok
}

// -----------------------------------------------------------------------------
// Numbers

func (l *Lexer) lexNumber() *Token {
	l.mark()
	l.eat()

	isFloat, hasExp := false, false

numLoop:
	for {
		c, err := l.peek()
		if err != nil || c == -1 {
			break numLoop
		}

		switch {
		case c == '_':
			l.skip()
		case isDecimalDigit(c):
			l.eat()
		case c == '.' && !isFloat:
			// A trailing `.` without fractional digits is a lex error
			// (spec.md §4.A): `1..10` (a range) must not be swallowed here.
			if two, err := l.r.Peek(2); err != nil || len(two) < 2 || !isDecimalDigit(rune(two[1])) {
				break numLoop
			}
			l.eat()
			isFloat = true
		case (c == 'e' || c == 'E') && !hasExp:
			l.eat()
			isFloat, hasExp = true, true
			if n, _ := l.peek(); n == '+' || n == '-' {
				l.eat()
			}
			if n, _ := l.peek(); !isDecimalDigit(n) {
				l.report(report.CodeLexError, "incomplete exponent in float literal")
			}
		default:
			break numLoop
		}
	}

	kind := TOK_INTLIT
	if isFloat {
		kind = TOK_FLOATLIT
	}

	return l.makeToken(kind)
}

// -----------------------------------------------------------------------------
// Strings & f-strings

var escapeRunes = map[rune]rune{
	'n': '\n', 'r': '\r', 't': '\t', '\\': '\\', '\'': '\'', '"': '"', '0': 0,
}

// lexString lexes a standard, triple-quoted, or f-string literal beginning
// at the current quote character.
func (l *Lexer) lexString(quote rune, isF bool) *Token {
	l.mark()
	l.eat() // consume opening quote

	triple := false
	if c, _ := l.peek(); c == quote {
		if c2, err := l.r.Peek(2); err == nil && len(c2) == 2 && rune(c2[1]) == quote {
			l.eat()
			l.eat()
			triple = true
		}
	}

	if isF {
		return l.lexFStringBody(quote, triple)
	}

	var out strings.Builder
	for {
		c, err := l.peek()
		if err != nil || c == -1 {
			l.report(report.CodeLexError, "unterminated string literal")
			break
		}

		if c == quote {
			if triple {
				if c2, err := l.r.Peek(3); err == nil && len(c2) == 3 && rune(c2[1]) == quote && rune(c2[2]) == quote {
					l.eat()
					l.eat()
					l.eat()
					break
				}
				l.eat()
				out.WriteRune(c)
				continue
			}
			l.eat()
			break
		}

		if c == '\n' && !triple {
			l.report(report.CodeLexError, "standard string cannot contain a newline")
			break
		}

		if c == '\\' {
			l.eat()
			r, ok := l.readEscape()
			if ok {
				out.WriteRune(r)
			}
			continue
		}

		l.eat()
		out.WriteRune(c)
	}

	tok := l.makeToken(TOK_STRINGLIT)
	tok.Value = out.String()
	return tok
}

// lexFStringBody scans the literal/expression segments of an f-string,
// producing a TOK_FSTRING_BEGIN token carrying the pre-split FStringParts
// sequence spec.md §3 requires.
func (l *Lexer) lexFStringBody(quote rune, triple bool) *Token {
	var parts []FStringPart
	var chunk strings.Builder
	chunkStart := l.getSpan()

	flushChunk := func() {
		if chunk.Len() > 0 {
			parts = append(parts, FStringPart{Text: chunk.String(), Span: report.Over(chunkStart, l.getSpan())})
			chunk.Reset()
		}
	}

	for {
		c, err := l.peek()
		if err != nil || c == -1 {
			l.report(report.CodeLexError, "unterminated f-string literal")
			break
		}

		if c == quote {
			if triple {
				if c2, err := l.r.Peek(3); err == nil && len(c2) == 3 && rune(c2[1]) == quote && rune(c2[2]) == quote {
					flushChunk()
					l.eat()
					l.eat()
					l.eat()
					break
				}
			} else {
				flushChunk()
				l.eat()
				break
			}
		}

		if c == '{' {
			flushChunk()
			l.eat()

			exprStart := l.getSpan()
			var exprSrc strings.Builder
			depth := 1
			for {
				ec, eerr := l.peek()
				if eerr != nil || ec == -1 {
					l.report(report.CodeLexError, "unterminated embedded expression in f-string")
					break
				}
				if ec == '{' {
					depth++
				} else if ec == '}' {
					depth--
					if depth == 0 {
						l.eat()
						break
					}
				}
				l.eat()
				exprSrc.WriteRune(ec)
			}

			parts = append(parts, FStringPart{IsExpr: true, Text: exprSrc.String(), Span: report.Over(exprStart, l.getSpan())})
			chunkStart = l.getSpan()
			continue
		}

		if c == '\\' {
			l.eat()
			r, ok := l.readEscape()
			if ok {
				chunk.WriteRune(r)
			}
			continue
		}

		if c == '\n' && !triple {
			l.report(report.CodeLexError, "standard f-string cannot contain a newline")
			break
		}

		l.eat()
		chunk.WriteRune(c)
	}

	tok := l.makeToken(TOK_FSTRING_BEGIN)
	tok.FStringParts = parts
	return tok
}

// readEscape consumes an escape sequence (the leading `\` already consumed)
// and returns the decoded rune.
func (l *Lexer) readEscape() (rune, bool) {
	c, err := l.eat()
	if err != nil || c == -1 {
		l.report(report.CodeLexError, "expected escape sequence, found end of file")
		return 0, false
	}

	if r, ok := escapeRunes[c]; ok {
		return r, true
	}

	switch c {
	case 'x':
		return l.readHexEscape(2)
	case 'u':
		if c2, _ := l.peek(); c2 == '{' {
			l.eat()
			var digits strings.Builder
			for {
				d, _ := l.peek()
				if d == '}' {
					l.eat()
					break
				}
				if d == -1 || !isHexDigit(d) {
					l.report(report.CodeLexError, "malformed unicode escape: expected `}`")
					return 0, false
				}
				l.eat()
				digits.WriteRune(d)
			}
			return decodeHex(digits.String()), true
		}
		return l.readHexEscape(4)
	default:
		l.report(report.CodeLexError, "unknown escape sequence `\\%c`", c)
		return 0, false
	}
}

func (l *Lexer) readHexEscape(n int) (rune, bool) {
	var digits strings.Builder
	for i := 0; i < n; i++ {
		c, err := l.eat()
		if err != nil || c == -1 || !isHexDigit(c) {
			l.report(report.CodeLexError, "expected %d hexadecimal digits in escape sequence", n)
			return 0, false
		}
		digits.WriteRune(c)
	}
	return decodeHex(digits.String()), true
}

func decodeHex(s string) rune {
	var v rune
	for _, c := range s {
		v *= 16
		switch {
		case c >= '0' && c <= '9':
			v += rune(c - '0')
		case c >= 'a' && c <= 'f':
			v += rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v += rune(c-'A') + 10
		}
	}
	return v
}

// -----------------------------------------------------------------------------
// Punctuation & operators

var operTwoChar = map[string]Kind{
	"==": TOK_EQ, "!=": TOK_NEQ, "<=": TOK_LTEQ, ">=": TOK_GTEQ,
	"+=": TOK_PLUS_ASSIGN, "-=": TOK_MINUS_ASSIGN, "*=": TOK_STAR_ASSIGN,
	"/=": TOK_SLASH_ASSIGN, "%=": TOK_PERCENT_ASSIGN,
	"->": TOK_ARROW, "..": TOK_DOTDOT,
}

var operOneChar = map[rune]Kind{
	'+': TOK_PLUS, '-': TOK_MINUS, '*': TOK_STAR, '/': TOK_SLASH, '%': TOK_PERCENT,
	'<': TOK_LT, '>': TOK_GT, '=': TOK_ASSIGN,
	'(': TOK_LPAREN, ')': TOK_RPAREN,
	'{': TOK_LBRACE, '}': TOK_RBRACE,
	'[': TOK_LBRACKET, ']': TOK_RBRACKET,
	',': TOK_COMMA, '.': TOK_DOT, ':': TOK_COLON,
}

func (l *Lexer) lexOperator() *Token {
	l.mark()
	c, _ := l.eat()

	if two, err := l.r.Peek(1); err == nil && len(two) == 1 {
		cand := string(c) + string(two[0])
		if kind, ok := operTwoChar[cand]; ok {
			l.eat()
			return l.finishOperator(kind)
		}
	}

	kind, ok := operOneChar[c]
	if !ok {
		l.report(report.CodeLexError, "unrecognized character `%c`", c)
		kind = TOK_EOF
	}

	switch kind {
	case TOK_LPAREN, TOK_LBRACKET, TOK_LBRACE:
		l.bracketDepth++
	case TOK_RPAREN, TOK_RBRACKET, TOK_RBRACE:
		if l.bracketDepth > 0 {
			l.bracketDepth--
		}
	}

	return l.finishOperator(kind)
}

func (l *Lexer) finishOperator(kind Kind) *Token {
	tok := l.makeToken(kind)
	l.noteSignificant(kind)
	return tok
}

// -----------------------------------------------------------------------------
// Low-level scanner primitives (grounded on bootstrap/syntax/lexer.go)

func (l *Lexer) mark() {
	l.startLine, l.startCol = l.line, l.col
}

func (l *Lexer) makeToken(kind Kind) *Token {
	value := l.tokBuff.String()
	l.tokBuff.Reset()
	return &Token{Kind: kind, Value: value, Span: l.getSpan()}
}

func (l *Lexer) getSpan() report.Span {
	return report.Span{File: l.file, StartLine: l.startLine, StartCol: l.startCol, EndLine: l.line, EndCol: l.col}
}

func (l *Lexer) report(code report.Code, format string, args ...any) {
	l.sink.Add(report.Errorf(code, l.getSpan(), format, args...))
}

func (l *Lexer) eat() (rune, error) {
	c, _, err := l.r.ReadRune()
	if err != nil {
		return -1, nil
	}
	l.updatePos(c)
	l.tokBuff.WriteRune(c)
	return c, nil
}

func (l *Lexer) skip() (rune, error) {
	c, _, err := l.r.ReadRune()
	if err != nil {
		return -1, nil
	}
	l.updatePos(c)
	return c, nil
}

func (l *Lexer) peek() (rune, error) {
	c, _, err := l.r.ReadRune()
	if err != nil {
		return -1, nil
	}
	if err := l.r.UnreadRune(); err != nil {
		return -1, err
	}
	return c, nil
}

func (l *Lexer) updatePos(c rune) {
	if c == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// -----------------------------------------------------------------------------

func isDecimalDigit(c rune) bool { return c >= '0' && c <= '9' }

func isHexDigit(c rune) bool {
	return isDecimalDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c rune) bool { return unicode.IsLetter(c) || c == '_' }
func isIdentPart(c rune) bool  { return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' }
