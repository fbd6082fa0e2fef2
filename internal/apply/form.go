package apply

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// MaxResumeBytes is the default largest resume accepted.
const MaxResumeBytes = 5 * 1024 * 1024

// AllowedResumeTypes are the accepted resume content types.
var AllowedResumeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"image/jpeg",
	"image/png",
}

// container formats that need the file extension to tell doc/docx apart
var containerFallback = map[string][]string{
	"application/x-ole-storage": {".doc"},
	"application/zip":           {".docx"},
}

// Resume is the uploaded file.
type Resume struct {
	Filename string
	Data     []byte
}

// Form is one job application.
type Form struct {
	FullName    string  `json:"fullName" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone" validate:"required,len=10,numeric"`
	CoverLetter string  `json:"coverLetter" validate:"required"`
	Resume      *Resume `json:"-"`
}

// ValidationError lists failing fields with a message each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid application: " + strings.Join(parts, "; ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"len":      "must be 10 digits",
	"numeric":  "must be 10 digits",
}

// Validate checks the text fields and the resume.
func (f *Form) Validate() error {
	return f.validate(MaxResumeBytes)
}

func (f *Form) validate(maxResumeBytes int) error {
	fields := map[string]string{}

	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate application: %w", err)
		}
		for _, fe := range verrs {
			msg, ok := fieldMessages[fe.Tag()]
			if !ok {
				msg = "is invalid"
			}
			fields[fe.Field()] = msg
		}
	}

	if strings.TrimSpace(f.CoverLetter) == "" {
		fields["CoverLetter"] = fieldMessages["required"]
	}

	if err := CheckResume(f.Resume, maxResumeBytes); err != nil {
		fields["Resume"] = err.Error()
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CheckResume enforces presence, size and content type.
func CheckResume(r *Resume, maxBytes int) error {
	if r == nil || len(r.Data) == 0 {
		return errors.New("please upload your resume")
	}
	if len(r.Data) > maxBytes {
		return fmt.Errorf("file too large, maximum size is %s", humanSize(maxBytes))
	}
	if _, err := ResumeContentType(r); err != nil {
		return err
	}
	return nil
}

// ResumeContentType detects the resume type from its bytes.
func ResumeContentType(r *Resume) (string, error) {
	detected := mimetype.Detect(r.Data)

	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range AllowedResumeTypes {
			if m.Is(allowed) {
				return allowed, nil
			}
		}

		if exts, ok := containerFallback[m.String()]; ok {
			ext := strings.ToLower(filepath.Ext(r.Filename))
			for _, e := range exts {
				if e == ext {
					return typeForExtension(ext), nil
				}
			}
		}
	}

	return "", fmt.Errorf("invalid file type %s, please upload PDF, DOC, DOCX, JPG, or PNG", detected.String())
}

func typeForExtension(ext string) string {
	if ext == ".docx" {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/msword"
}

func humanSize(n int) string {
	if n%(1024*1024) == 0 {
		return fmt.Sprintf("%dMB", n/(1024*1024))
	}
	return fmt.Sprintf("%d bytes", n)
}
