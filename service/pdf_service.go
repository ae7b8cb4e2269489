package service

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/tieubaoca/pdfchat-be/types"
)

// DocumentExtractor produces the text content of a PDF file. The
// processing pipeline only depends on this interface, not on how the
// text is obtained.
type DocumentExtractor interface {
	// ExtractText returns the whole document's text and its page count.
	ExtractText(filePath string) (string, int, error)
	// ExtractTextByPage returns one entry per page, 1-based and ordered.
	ExtractTextByPage(filePath string) ([]types.DocumentPage, error)
}

// PDFService extracts text with the poppler command line tools
// (pdftotext, pdfinfo).
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

func (s *PDFService) ExtractText(filePath string) (string, int, error) {
	totalPages, err := getNumPages(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text from PDF: %w", err)
	}
	text, err := runPdftotext(filePath, 0, 0)
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text from PDF: %w", err)
	}
	return cleanText(text), totalPages, nil
}

// ExtractTextByPage extracts each page with pdftotext. Pages that fail
// individually are kept as empty entries so page numbering stays
// contiguous. If no page yields text at all, the whole document's text is
// divided evenly across the page count as an approximation.
func (s *PDFService) ExtractTextByPage(filePath string) ([]types.DocumentPage, error) {
	totalPages, err := getNumPages(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to extract pages from PDF: %w", err)
	}

	pages := make([]types.DocumentPage, 0, totalPages)
	extracted := 0
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text, err := runPdftotext(filePath, pageNum, pageNum)
		if err != nil {
			log.Printf("Warning: failed to extract text from page %d: %v", pageNum, err)
			text = ""
		}
		text = cleanText(text)
		if text != "" {
			extracted++
		}
		pages = append(pages, types.DocumentPage{
			PageNumber: pageNum,
			Text:       text,
		})
	}

	if extracted == 0 {
		text, err := runPdftotext(filePath, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to extract pages from PDF: %w", err)
		}
		return SplitTextIntoChunks(cleanText(text), totalPages), nil
	}
	return pages, nil
}

// runPdftotext extracts text to stdout. Pass firstPage/lastPage as 0 to
// extract the whole document.
func runPdftotext(filePath string, firstPage, lastPage int) (string, error) {
	args := []string{"-enc", "UTF-8", "-nopgbrk"}
	if firstPage > 0 {
		args = append(args, "-f", strconv.Itoa(firstPage), "-l", strconv.Itoa(lastPage))
	}
	args = append(args, filePath, "-")

	cmd := exec.Command("pdftotext", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error executing pdftotext: %w", err)
	}
	return out.String(), nil
}

var pdfinfoPagesRegexp = regexp.MustCompile(`Pages:\s+(\d+)`)

// getNumPages uses pdfinfo to get the total number of pages in a PDF file.
func getNumPages(pdfPath string) (int, error) {
	cmd := exec.Command("pdfinfo", pdfPath)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %v", err)
	}

	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		if matches := pdfinfoPagesRegexp.FindStringSubmatch(scanner.Text()); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}
	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

func cleanText(text string) string {
	replacements := map[string]string{
		"\u0000": "",   // Null character
		"\ufffd": "",   // Unicode replacement character
		"\u001b": "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}
	return strings.TrimSpace(cleaned)
}
