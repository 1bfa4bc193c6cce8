package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls plain text from a PDF. The library offers no
// cancellation, so the work runs in a goroutine bounded by the configured
// timeout.
func (e *Extractor) extractPDF(ctx context.Context, content []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.pdfTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		text, err := readPDF(content)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("pdf extraction timed out: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("read pdf: %w", res.err)
		}
		if res.text == "" {
			return "", errors.New("pdf contains no extractable text")
		}
		return res.text, nil
	}
}

func readPDF(content []byte) (text string, err error) {
	defer func() {
		// The pdf library panics on some malformed files.
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return asText(buf.Bytes()), nil
}
