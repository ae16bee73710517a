package parser

import (
	"strings"
	"unicode/utf8"
)

// Tokenize splits a rule into tokens in source order.
//
// Double quotes are treated as single quotes. Quoted strings keep their
// quotes. Runs of operator characters form one token, so "=>" reaches the
// builder whole. AND and OR are keywords only as whole uppercase words.
// Characters that start no token become single-character tokens so that the
// builder can report them. Tokenize never fails and does not check grammar.
func Tokenize(rule string) []string {
	rule = strings.ReplaceAll(rule, `"`, "'")

	var tokens []string
	for i := 0; i < len(rule); {
		c := rule[i]
		switch {
		case isSpace(c):
			i++
		case c == '(' || c == ')':
			tokens = append(tokens, rule[i:i+1])
			i++
		case isOperatorChar(c):
			j := i + 1
			for j < len(rule) && isOperatorChar(rule[j]) {
				j++
			}
			tokens = append(tokens, rule[i:j])
			i = j
		case c == '\'':
			end := strings.IndexByte(rule[i+1:], '\'')
			if end < 0 {
				tokens = append(tokens, rule[i:])
				return tokens
			}
			tokens = append(tokens, rule[i:i+end+2])
			i += end + 2
		case isIdentStart(c):
			j := i + 1
			for j < len(rule) && isIdentPart(rule[j]) {
				j++
			}
			tokens = append(tokens, rule[i:j])
			i = j
		case isDigit(c):
			j := i + 1
			for j < len(rule) && isDigit(rule[j]) {
				j++
			}
			tokens = append(tokens, rule[i:j])
			i = j
		default:
			_, size := utf8.DecodeRuneInString(rule[i:])
			tokens = append(tokens, rule[i:i+size])
			i += size
		}
	}
	return tokens
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isOperatorChar(c byte) bool {
	return c == '<' || c == '>' || c == '=' || c == '!'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// isIdentifier reports whether tok is a whole identifier token.
func isIdentifier(tok string) bool {
	if tok == "" || !isIdentStart(tok[0]) {
		return false
	}
	for i := 1; i < len(tok); i++ {
		if !isIdentPart(tok[i]) {
			return false
		}
	}
	return true
}
