package lexer

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/funvibe/surf/internal/ast"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/token"
)

const punctuation = ";,(){}:+-><%.=![]/|*^&\\"

var numberPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ImportLocator decides what an import path written in a file points to.
// Source imports are spliced into the token stream; anything else
// (headers, standard-library packages) is left in place for the parser.
type ImportLocator interface {
	Locate(raw, from string) (location string, source bool, err error)
}

type Option func(*Lexer)

// WithLenientEOF drops an unterminated string literal or block comment at end
// of input instead of failing.
func WithLenientEOF() Option {
	return func(l *Lexer) { l.lenientEOF = true }
}

// WithLocator enables import splicing in Tokenize.
func WithLocator(loc ImportLocator) Option {
	return func(l *Lexer) { l.locator = loc }
}

type Lexer struct {
	lenientEOF bool
	locator    ImportLocator
	spliced    []ast.Import
}

func New(opts ...Option) *Lexer {
	l := &Lexer{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Spliced returns the source imports expanded by the last Tokenize call,
// in the order they were first reached.
func (l *Lexer) Spliced() []ast.Import {
	return l.spliced
}

// TokenizeSingle scans one file without touching its imports.
func (l *Lexer) TokenizeSingle(src, path string) ([]token.Token, error) {
	s := &scanner{src: []rune(src), file: path, line: 1, col: 1, lenientEOF: l.lenientEOF}
	return s.run()
}

// Tokenize scans src and splices every top-level source import it reaches,
// recursively, in place of the import statement. Imports inside braces stay
// in the stream for the parser to reject. A file that imports one of its own
// ancestors is a circular dependency; a file reached twice along different
// paths is only spliced the first time.
func (l *Lexer) Tokenize(src, path string) ([]token.Token, error) {
	l.spliced = nil
	if l.locator == nil {
		return l.TokenizeSingle(src, path)
	}
	root := path
	if abs, err := filepath.Abs(path); err == nil && path != "" {
		root = abs
	}
	seen := map[string]bool{root: true}
	return l.expand(src, root, []string{root}, seen)
}

func (l *Lexer) expand(src, file string, stack []string, seen map[string]bool) ([]token.Token, error) {
	tokens, err := l.TokenizeSingle(src, file)
	if err != nil {
		return nil, err
	}

	out := make([]token.Token, 0, len(tokens))
	depth := 0
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth = max(depth-1, 0)
		}
		if tok.Type != token.IMPORT || depth > 0 || i+1 >= len(tokens) || tokens[i+1].Type != token.STRING_LITERAL {
			out = append(out, tok)
			continue
		}

		raw := tokens[i+1].Lexeme
		location, source, err := l.locator.Locate(raw, file)
		if err != nil {
			var de *diagnostics.DiagnosticError
			if errors.As(err, &de) && de.Trace == "" {
				de.WithTrace(tok.Trace())
			}
			return nil, err
		}
		if !source {
			out = append(out, tok)
			continue
		}

		end := i + 2
		if end < len(tokens) && tokens[end].Type == token.SEMICOLON {
			end++
		}
		i = end - 1

		if slices.Contains(stack, location) {
			chain := append(slices.Clone(stack), location)
			return nil, diagnostics.NewError(diagnostics.ErrCircularDependency, tok, "circular dependency detected").
				WithChain(chain).
				WithHints("Separate dependencies into different files to avoid this issue")
		}
		if seen[location] {
			slog.Debug("import coalesced", "path", location, "from", file)
			continue
		}
		seen[location] = true

		data, err := os.ReadFile(location)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, diagnostics.Errorf(diagnostics.ErrImportNotFound, tok, "import %q not found", raw).
					WithChain(append(slices.Clone(stack), location))
			}
			return nil, diagnostics.Wrap(err, diagnostics.ErrImportNotFound, "failed to read import").WithTrace(tok.Trace())
		}

		l.spliced = append(l.spliced, ast.Import{Location: location, Trace: tok.Trace(), Kind: ast.SourceImport})
		inner, err := l.expand(string(data), location, append(slices.Clone(stack), location), seen)
		if err != nil {
			return nil, err
		}
		out = append(out, inner...)
	}
	return out, nil
}

type scanner struct {
	src        []rune
	file       string
	lenientEOF bool

	tokens []token.Token
	word   strings.Builder

	line, col         int
	wordLine, wordCol int

	inString       bool
	inEscape       bool
	inLineComment  bool
	inBlockComment bool

	// start of the open string literal or block comment, for diagnostics
	openLine, openCol int
	// index of the '*' that opened the current block comment
	blockOpen int
}

func (s *scanner) run() ([]token.Token, error) {
	for i := 0; i < len(s.src); i++ {
		ch := s.src[i]
		if ch == '\n' {
			s.newline()
			continue
		}
		s.step(i, ch)
		s.col++
	}

	if s.inString {
		if !s.lenientEOF {
			return nil, s.errorAt(s.openLine, s.openCol, "unterminated string literal").
				WithHints("Close the string with a matching '\"'")
		}
		s.word.Reset()
	}
	if s.inBlockComment && !s.lenientEOF {
		return nil, s.errorAt(s.openLine, s.openCol, "unterminated block comment").
			WithHints("Close the comment with '*/'")
	}
	s.flush()
	return s.tokens, nil
}

func (s *scanner) newline() {
	switch {
	case s.inLineComment:
		s.inLineComment = false
	case s.inString:
		s.word.WriteRune('\n')
	case !s.inBlockComment:
		s.flush()
	}
	s.line++
	s.col = 1
}

func (s *scanner) step(i int, ch rune) {
	switch {
	case s.inLineComment:
		return
	case s.inBlockComment:
		if ch == '/' && i-1 > s.blockOpen && s.src[i-1] == '*' {
			s.inBlockComment = false
		}
		return
	case s.inString:
		s.stringChar(ch)
		return
	}

	switch {
	case ch == '"':
		s.flush()
		s.inString = true
		s.openLine, s.openCol = s.line, s.col
	case ch == '/' && i+1 < len(s.src) && (s.src[i+1] == '/' || s.src[i+1] == '*'):
		s.flush()
		if s.src[i+1] == '/' {
			s.inLineComment = true
		} else {
			s.inBlockComment = true
			s.blockOpen = i + 1
			s.openLine, s.openCol = s.line, s.col
		}
	case unicode.IsSpace(ch):
		s.flush()
	case strings.ContainsRune(punctuation, ch):
		if ch == '.' && s.pendingInteger() && i+1 < len(s.src) && isDigit(s.src[i+1]) {
			s.appendWord(ch)
			return
		}
		s.flush()
		s.punct(i, ch)
	default:
		s.appendWord(ch)
	}
}

func (s *scanner) stringChar(ch rune) {
	switch {
	case s.inEscape:
		s.word.WriteRune(ch)
		s.inEscape = false
	case ch == '\\':
		s.word.WriteRune(ch)
		s.inEscape = true
	case ch == '"':
		s.inString = false
		s.tokens = append(s.tokens, token.Token{
			Type:   token.STRING_LITERAL,
			Lexeme: s.word.String(),
			File:   s.file,
			Line:   s.openLine,
			Column: s.openCol,
		})
		s.word.Reset()
	default:
		s.word.WriteRune(ch)
	}
}

// punct classifies a punctuation character, merging it with the previously
// emitted token where the two form a single operator.
func (s *scanner) punct(i int, ch rune) {
	last, hasLast := s.last()
	adjacent := hasLast && i > 0 && last.Type != token.STRING_LITERAL && strings.HasSuffix(last.Lexeme, string(s.src[i-1]))

	switch ch {
	case '>':
		if adjacent && last.Type == token.MINUS {
			s.replaceLast("->")
			return
		}
	case '=':
		if adjacent {
			switch last.Type {
			case token.ASSIGN, token.LT, token.GT, token.BANG, token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT:
				s.replaceLast(last.Lexeme + "=")
				return
			}
		}
	case '+':
		if adjacent && last.Type == token.PLUS {
			s.replaceLast("++")
			return
		}
	case '-':
		if adjacent && last.Type == token.MINUS {
			s.replaceLast("--")
			return
		}
	case ']':
		if n := len(s.tokens); n >= 2 && s.tokens[n-2].Type == token.LBRACKET {
			elem := s.tokens[n-1]
			if token.IsScalarType(elem.Type) {
				s.tokens = s.tokens[:n-2]
				s.emit(elem.Lexeme+"[]", elem.Line, elem.Column)
				return
			}
			if elem.Type == token.UNKNOWN && elem.Lexeme == "discrete" {
				open := s.tokens[n-2]
				s.tokens = s.tokens[:n-2]
				s.emit("[discrete]", open.Line, open.Column)
				return
			}
		}
	}
	s.emit(string(ch), s.line, s.col)
}

func (s *scanner) last() (token.Token, bool) {
	if len(s.tokens) == 0 {
		return token.Token{}, false
	}
	return s.tokens[len(s.tokens)-1], true
}

// replaceLast swaps the previous token for a merged lexeme at the same position.
func (s *scanner) replaceLast(lexeme string) {
	prev := s.tokens[len(s.tokens)-1]
	s.tokens = s.tokens[:len(s.tokens)-1]
	s.emit(lexeme, prev.Line, prev.Column)
}

func (s *scanner) appendWord(ch rune) {
	if s.word.Len() == 0 {
		s.wordLine, s.wordCol = s.line, s.col
	}
	s.word.WriteRune(ch)
}

func (s *scanner) pendingInteger() bool {
	w := s.word.String()
	if w == "" {
		return false
	}
	for _, r := range w {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

// isDigit matches the ASCII digits accepted by numberPattern.
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (s *scanner) flush() {
	if s.word.Len() == 0 {
		return
	}
	s.emit(s.word.String(), s.wordLine, s.wordCol)
	s.word.Reset()
}

func (s *scanner) emit(lexeme string, line, col int) {
	s.tokens = append(s.tokens, token.Token{
		Type:   classify(lexeme),
		Lexeme: lexeme,
		File:   s.file,
		Line:   line,
		Column: col,
	})
}

func (s *scanner) errorAt(line, col int, msg string) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrLex, token.Token{File: s.file, Line: line, Column: col}, msg)
}

func classify(lexeme string) token.TokenType {
	if tt, ok := token.LookupKnown(lexeme); ok {
		return tt
	}
	if numberPattern.MatchString(lexeme) {
		return token.NUM_LITERAL
	}
	if lexeme == "true" || lexeme == "false" {
		return token.BOOL_LITERAL
	}
	return token.UNKNOWN
}
