package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ReadFile returns a tool that reads a file and returns its contents.
func ReadFile() Tool {
	return New("read_file", "Read the contents of a text file at the given path",
		ObjectSchema([][2]string{{"path", "File path to read"}}),
		func(_ context.Context, arguments string) (string, error) {
			path := StringArg(arguments, "path")
			if path == "" {
				path = StringArg(arguments, "input")
			}
			if path == "" {
				return "", fmt.Errorf("path argument is required")
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return "", fmt.Errorf("read %s: %w", path, err)
			}
			return string(content), nil
		})
}

// WriteFile returns a tool that writes content to a file, creating parent
// directories as needed.
func WriteFile() Tool {
	return New("write_file", "Write content to a file at the given path",
		ObjectSchema([][2]string{
			{"path", "File path to write"},
			{"content", "Content to write"},
		}),
		func(_ context.Context, arguments string) (string, error) {
			path := StringArg(arguments, "path")
			if path == "" {
				return "", fmt.Errorf("path argument is required")
			}
			content := StringArg(arguments, "content")
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return "", fmt.Errorf("create directory for %s: %w", path, err)
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return "", fmt.Errorf("write %s: %w", path, err)
			}
			return fmt.Sprintf("wrote %d bytes to %s", len(content), path), nil
		})
}

// ListFiles returns a tool that lists directory entries, directories
// marked with a trailing separator.
func ListFiles() Tool {
	return New("list_files", "List the files in a directory",
		ObjectSchema([][2]string{{"path", "Directory path to list"}}),
		func(_ context.Context, arguments string) (string, error) {
			path := StringArg(arguments, "path")
			if path == "" {
				path = StringArg(arguments, "input")
			}
			if path == "" {
				path = "."
			}
			entries, err := os.ReadDir(path)
			if err != nil {
				return "", fmt.Errorf("list %s: %w", path, err)
			}
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				name := e.Name()
				if e.IsDir() {
					name += string(filepath.Separator)
				}
				names = append(names, name)
			}
			sort.Strings(names)
			return strings.Join(names, "\n"), nil
		})
}

// Calculate returns a tool that evaluates arithmetic expressions with
// + - * / % and parentheses.
func Calculate() Tool {
	return New("calculate", "Evaluate an arithmetic expression and return the numeric result",
		ObjectSchema([][2]string{{"expression", "Arithmetic expression, e.g. (2+3)*4"}}),
		func(_ context.Context, arguments string) (string, error) {
			expr := StringArg(arguments, "expression")
			if expr == "" {
				expr = StringArg(arguments, "input")
			}
			if expr == "" {
				return "", fmt.Errorf("expression argument is required")
			}
			result, err := evalExpression(expr)
			if err != nil {
				return "", err
			}
			return strconv.FormatFloat(result, 'f', -1, 64), nil
		})
}

// FormatJSON returns a tool that pretty-prints a JSON document.
func FormatJSON() Tool {
	return New("format_json", "Validate and pretty-print a JSON document",
		ObjectSchema([][2]string{{"input", "JSON text to format"}}),
		func(_ context.Context, arguments string) (string, error) {
			input := StringArg(arguments, "input")
			var parsed any
			if err := json.Unmarshal([]byte(input), &parsed); err != nil {
				return "", fmt.Errorf("invalid JSON: %w", err)
			}
			pretty, err := json.MarshalIndent(parsed, "", "  ")
			if err != nil {
				return "", err
			}
			return string(pretty), nil
		})
}

// SummarizeText returns a tool that produces a naive extractive summary:
// the first sentences of the text up to roughly maxChars characters.
func SummarizeText(maxChars int) Tool {
	if maxChars <= 0 {
		maxChars = 500
	}
	return New("summarize_text", "Produce a short extractive summary of the given text",
		ObjectSchema([][2]string{{"input", "Text to summarize"}}),
		func(_ context.Context, arguments string) (string, error) {
			text := strings.TrimSpace(StringArg(arguments, "input"))
			if text == "" {
				return "", fmt.Errorf("input argument is required")
			}
			runes := []rune(text)
			if len(runes) <= maxChars {
				return text, nil
			}

			// Prefer cutting at a sentence boundary inside the budget. The
			// cut indexes runes so multibyte text is never sliced mid-rune.
			cut := maxChars
			for i := maxChars; i > maxChars/2; i-- {
				switch runes[i-1] {
				case '.', '!', '?':
					cut = i
					goto done
				}
			}
		done:
			return strings.TrimSpace(string(runes[:cut])), nil
		})
}

// expression evaluator: precedence-climbing over + - * / % and parentheses.
type exprParser struct {
	input string
	pos   int
}

func evalExpression(expr string) (float64, error) {
	p := &exprParser{input: expr}
	result, err := p.parseAddSub()
	if err != nil {
		return 0, fmt.Errorf("evaluate %q: %w", expr, err)
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("evaluate %q: unexpected %q at position %d",
			expr, p.input[p.pos], p.pos)
	}
	return result, nil
}

func (p *exprParser) parseAddSub() (float64, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.consume('+'):
			right, err := p.parseMulDiv()
			if err != nil {
				return 0, err
			}
			left += right
		case p.consume('-'):
			right, err := p.parseMulDiv()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseMulDiv() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.consume('*'):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.consume('/'):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case p.consume('%'):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			left = float64(int64(left) % int64(right))
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpace()
	if p.consume('-') {
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpace()
	if p.consume('(') {
		v, err := p.parseAddSub()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if !p.consume(')') {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
		} else {
			break
		}
	}
	if start == p.pos {
		return 0, fmt.Errorf("expected number at position %d", start)
	}
	return strconv.ParseFloat(p.input[start:p.pos], 64)
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) consume(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}
