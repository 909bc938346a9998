package llm

import (
	"errors"
	"testing"
)

func TestParseFields_PlainJSON(t *testing.T) {
	fields, err := ParseFields(`{"is_company": true, "company_name": "建越科技股份有限公司", "phone": "02-1234-5678", "email": "a@b.com"}`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !fields.IsCompany {
		t.Error("Expected is_company true")
	}
	if fields.CompanyName != "建越科技股份有限公司" {
		t.Errorf("CompanyName = %q", fields.CompanyName)
	}
	if fields.Phone != "02-1234-5678" || fields.Email != "a@b.com" {
		t.Errorf("Phone/Email = %q/%q", fields.Phone, fields.Email)
	}
	// Absent keys decode to empty strings, never missing values
	if fields.Fax != "" || fields.TaxID != "" {
		t.Errorf("Fax/TaxID = %q/%q, want empty", fields.Fax, fields.TaxID)
	}
}

func TestParseFields_FencedJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"json fence", "```json\n{\"is_company\": true, \"phone\": \"0212345678\"}\n```"},
		{"bare fence", "```\n{\"is_company\": true, \"phone\": \"0212345678\"}\n```"},
		{"single line fence", "```json{\"is_company\": true, \"phone\": \"0212345678\"}```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := ParseFields(tt.raw)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if fields.Phone != "0212345678" {
				t.Errorf("Phone = %q", fields.Phone)
			}
		})
	}
}

func TestParseFields_RepairsSloppyJSON(t *testing.T) {
	// Trailing comma and single quotes, the usual model sloppiness
	fields, err := ParseFields(`{'is_company': true, 'phone': '02-1234-5678',}`)
	if err != nil {
		t.Fatalf("Expected repair to succeed, got %v", err)
	}
	if fields.Phone != "02-1234-5678" {
		t.Errorf("Phone = %q", fields.Phone)
	}
}

func TestParseFields_MalformedOutput(t *testing.T) {
	_, err := ParseFields("Sorry, I cannot process this request.")
	if err == nil {
		t.Fatal("Expected error for non-JSON text")
	}

	var malformed *MalformedOutputError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedOutputError, got %T", err)
	}
	if malformed.Raw != "Sorry, I cannot process this request." {
		t.Errorf("Raw = %q", malformed.Raw)
	}
}

func TestParseFields_NotCompany(t *testing.T) {
	fields, err := ParseFields(`{"is_company": false}`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fields.IsCompany {
		t.Error("Expected is_company false")
	}
}

func TestStripCodeFence_NoFence(t *testing.T) {
	in := `{"is_company": true}`
	if got := StripCodeFence(in); got != in {
		t.Errorf("StripCodeFence changed unfenced input: %q", got)
	}
}
