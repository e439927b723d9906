package logo

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	commentStartRuneConstant  = ';'
	quoteRuneConstant         = '"'
	variableRuneConstant      = ':'
	newlineRuneConstant       = '\n'
	decimalPointRuneConstant  = '.'
	underscoreRuneConstant    = '_'
	questionMarkRuneConstant  = '?'
	emptyNameDetailConstant   = "empty name"
	invalidNumberDetailPrefix = "invalid number "
	singleCharacterOperators  = "+-*/^=<>"
)

var twoCharacterOperators = map[string]bool{
	OperatorLessOrEqual:    true,
	OperatorGreaterOrEqual: true,
	OperatorNotEqual:       true,
}

// TokenKind classifies lexical tokens.
type TokenKind int

// Token kinds produced by Tokenize.
const (
	TokenEnd TokenKind = iota
	TokenNumber
	TokenWord
	TokenQuotedWord
	TokenVariable
	TokenLeftBracket
	TokenRightBracket
	TokenLeftParenthesis
	TokenRightParenthesis
	TokenOperator
)

var tokenKindNames = map[TokenKind]string{
	TokenEnd:              "end of input",
	TokenNumber:           "number",
	TokenWord:             "word",
	TokenQuotedWord:       "quoted word",
	TokenVariable:         "variable",
	TokenLeftBracket:      "[",
	TokenRightBracket:     "]",
	TokenLeftParenthesis:  "(",
	TokenRightParenthesis: ")",
	TokenOperator:         "operator",
}

// String names the token kind for diagnostics.
func (kind TokenKind) String() string {
	return tokenKindNames[kind]
}

// Token is a lexical unit with its source position. SpaceBefore and
// SpaceAfter record adjacent whitespace, which disambiguates unary minus.
type Token struct {
	Kind        TokenKind
	Text        string
	Number      float64
	Line        int
	Column      int
	SpaceBefore bool
	SpaceAfter  bool
}

type lexer struct {
	source []rune
	offset int
	line   int
	column int
	tokens []Token
}

// Tokenize splits Logo source into tokens terminated by a TokenEnd token.
// Words are lower-cased; quoted and variable names keep their case.
func Tokenize(source string) ([]Token, error) {
	tokenizer := &lexer{source: []rune(source), line: 1, column: 1}
	for {
		spaceBefore := tokenizer.skipWhitespaceAndComments()
		if tokenizer.offset >= len(tokenizer.source) {
			tokenizer.emit(Token{Kind: TokenEnd, Line: tokenizer.line, Column: tokenizer.column, SpaceBefore: spaceBefore})
			return tokenizer.tokens, nil
		}

		token, scanError := tokenizer.scan()
		if scanError != nil {
			return nil, scanError
		}
		token.SpaceBefore = spaceBefore
		tokenizer.emit(token)
	}
}

func (tokenizer *lexer) emit(token Token) {
	if token.SpaceBefore && len(tokenizer.tokens) > 0 {
		tokenizer.tokens[len(tokenizer.tokens)-1].SpaceAfter = true
	}
	tokenizer.tokens = append(tokenizer.tokens, token)
}

func (tokenizer *lexer) skipWhitespaceAndComments() bool {
	skipped := tokenizer.offset == 0
	for tokenizer.offset < len(tokenizer.source) {
		current := tokenizer.source[tokenizer.offset]
		switch {
		case unicode.IsSpace(current):
			tokenizer.advance()
			skipped = true
		case current == commentStartRuneConstant:
			for tokenizer.offset < len(tokenizer.source) && tokenizer.source[tokenizer.offset] != newlineRuneConstant {
				tokenizer.advance()
			}
			skipped = true
		default:
			return skipped
		}
	}
	return skipped
}

func (tokenizer *lexer) advance() rune {
	current := tokenizer.source[tokenizer.offset]
	tokenizer.offset++
	if current == newlineRuneConstant {
		tokenizer.line++
		tokenizer.column = 1
	} else {
		tokenizer.column++
	}
	return current
}

func (tokenizer *lexer) peek(distance int) (rune, bool) {
	position := tokenizer.offset + distance
	if position >= len(tokenizer.source) {
		return 0, false
	}
	return tokenizer.source[position], true
}

func (tokenizer *lexer) scan() (Token, error) {
	start := Token{Line: tokenizer.line, Column: tokenizer.column}
	current, _ := tokenizer.peek(0)

	switch {
	case current == '[':
		tokenizer.advance()
		start.Kind, start.Text = TokenLeftBracket, "["
		return start, nil
	case current == ']':
		tokenizer.advance()
		start.Kind, start.Text = TokenRightBracket, "]"
		return start, nil
	case current == '(':
		tokenizer.advance()
		start.Kind, start.Text = TokenLeftParenthesis, "("
		return start, nil
	case current == ')':
		tokenizer.advance()
		start.Kind, start.Text = TokenRightParenthesis, ")"
		return start, nil
	case unicode.IsDigit(current) || current == decimalPointRuneConstant:
		return tokenizer.scanNumber(start)
	case current == quoteRuneConstant || current == variableRuneConstant:
		return tokenizer.scanName(start, current)
	case isWordStart(current):
		tokenizer.scanIdentifier(&start)
		start.Kind = TokenWord
		start.Text = strings.ToLower(start.Text)
		return start, nil
	case strings.ContainsRune(singleCharacterOperators, current):
		return tokenizer.scanOperator(start), nil
	default:
		return Token{}, &ParseError{Line: start.Line, Column: start.Column, Detail: string(current), Err: ErrInvalidCharacter}
	}
}

func (tokenizer *lexer) scanNumber(start Token) (Token, error) {
	var builder strings.Builder
	for {
		current, available := tokenizer.peek(0)
		if !available || !(unicode.IsDigit(current) || current == decimalPointRuneConstant) {
			break
		}
		builder.WriteRune(tokenizer.advance())
	}

	text := builder.String()
	number, conversionError := strconv.ParseFloat(text, 64)
	if conversionError != nil {
		return Token{}, &ParseError{Line: start.Line, Column: start.Column, Detail: invalidNumberDetailPrefix + text, Err: ErrUnexpectedToken}
	}
	start.Kind, start.Text, start.Number = TokenNumber, text, number
	return start, nil
}

func (tokenizer *lexer) scanName(start Token, marker rune) (Token, error) {
	tokenizer.advance()
	tokenizer.scanIdentifier(&start)
	if len(start.Text) == 0 {
		return Token{}, &ParseError{Line: start.Line, Column: start.Column, Detail: emptyNameDetailConstant, Err: ErrUnexpectedToken}
	}
	if marker == quoteRuneConstant {
		start.Kind = TokenQuotedWord
	} else {
		start.Kind = TokenVariable
	}
	return start, nil
}

func (tokenizer *lexer) scanIdentifier(token *Token) {
	var builder strings.Builder
	for {
		current, available := tokenizer.peek(0)
		if !available || !isWordPart(current) {
			break
		}
		builder.WriteRune(tokenizer.advance())
	}
	token.Text = builder.String()
}

func (tokenizer *lexer) scanOperator(start Token) Token {
	first := tokenizer.advance()
	start.Kind = TokenOperator
	start.Text = string(first)
	if second, available := tokenizer.peek(0); available {
		candidate := string([]rune{first, second})
		if twoCharacterOperators[candidate] {
			tokenizer.advance()
			start.Text = candidate
		}
	}
	return start
}

func isWordStart(character rune) bool {
	return unicode.IsLetter(character) || character == underscoreRuneConstant
}

func isWordPart(character rune) bool {
	return unicode.IsLetter(character) || unicode.IsDigit(character) || character == underscoreRuneConstant || character == questionMarkRuneConstant
}
