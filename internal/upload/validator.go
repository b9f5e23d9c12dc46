package upload

import (
	"fmt"
	"strings"
)

// MiB is one mebibyte.
const MiB = 1024 * 1024

// Defaults for the document picker.
var (
	DefaultExtensions       = []string{".pdf", ".docx", ".doc"}
	DefaultMaxSize    int64 = 10 * MiB
)

// Rejection reasons.
const (
	ReasonType = "type"
	ReasonSize = "size"
)

// RejectError explains why a file was refused. Message is user-facing.
type RejectError struct {
	Name    string
	Reason  string
	Message string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("rejected %q (%s): %s", e.Name, e.Reason, e.Message)
}

// Validator holds the client-side acceptance rules.
type Validator struct {
	AllowedExtensions []string
	MaxSize           int64
}

// DefaultValidator accepts .pdf, .docx and .doc files up to 10 MiB.
func DefaultValidator() Validator {
	return Validator{
		AllowedExtensions: DefaultExtensions,
		MaxSize:           DefaultMaxSize,
	}
}

// Extension is "." plus the lowercased text after the last dot. A name
// without a dot yields "." plus the whole name, so "pdf" reads as ".pdf".
func Extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return "." + strings.ToLower(name)
}

// Validate checks the extension first and the size second.
func (v Validator) Validate(name string, size int64) error {
	if !v.allowed(Extension(name)) {
		return &RejectError{Name: name, Reason: ReasonType, Message: "Please upload a PDF or DOCX file"}
	}
	if size > v.MaxSize {
		return &RejectError{Name: name, Reason: ReasonSize, Message: v.sizeMessage()}
	}
	return nil
}

func (v Validator) allowed(ext string) bool {
	for _, a := range v.AllowedExtensions {
		if strings.EqualFold(a, ext) {
			return true
		}
	}
	return false
}

func (v Validator) sizeMessage() string {
	return fmt.Sprintf("File size must be less than %dMB", v.MaxSize/MiB)
}
