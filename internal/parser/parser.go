package parser

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/inspectorjson/internal/errors"
	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

const byteOrderMark = "\uFEFF"

// Parse reads all of reader and parses it as one JSON document. Files and
// pipes usually end in a newline, so trailing whitespace is dropped before
// the strict parser sees the text.
func Parse(reader io.Reader) (jsonvalue.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read input", err)
	}
	return parseText(string(data))
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (jsonvalue.Value, error) {
	return parseText(jsonString)
}

func parseText(text string) (jsonvalue.Value, error) {
	text = strings.TrimPrefix(text, byteOrderMark)
	text = strings.TrimRight(text, " \t\r\n")
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}

	v, err := jsonvalue.ParseJSON(text)
	if err != nil {
		var syntaxErr *jsonvalue.SyntaxError
		if stderrors.As(err, &syntaxErr) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxErr.Offset),
				err,
			)
		}
		return nil, errors.NewParsingError("failed to parse JSON", err)
	}
	return v, nil
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (jsonvalue.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		_ = file.Close()
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}
