package extract

import "testing"

func TestPDFInvalidData(t *testing.T) {
	if _, err := PDF("broken.pdf", []byte("definitely not a pdf")); err == nil {
		t.Error("invalid pdf accepted")
	}
}

func TestCleanPDFText(t *testing.T) {
	got := cleanPDFText("Hello\x00\x01   world,\n\n\ntest.")
	if got != "Hello world, test." {
		t.Errorf("cleanPDFText = %q", got)
	}
}

func TestPDFTitleFromFirstLine(t *testing.T) {
	if got := pdfTitle("Attention Is All You Need\nabstract follows"); got != "Attention Is All You Need" {
		t.Errorf("title = %q", got)
	}
}

func TestPDFTitleRejectsLongFirstLine(t *testing.T) {
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	if got := pdfTitle(string(long) + "\nrest"); got != "" {
		t.Errorf("title = %q, want empty for body-like first line", got)
	}
}

func TestPDFTitleSkipsBlankLines(t *testing.T) {
	if got := pdfTitle("\n\n  \nReal Title\nbody"); got != "Real Title" {
		t.Errorf("title = %q, want Real Title", got)
	}
}
