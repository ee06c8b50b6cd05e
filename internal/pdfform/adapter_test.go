package pdfform

import (
	"bytes"
	"encoding/base64"
	"testing"
)

// minimalPDF is a one-page PDF without an AcroForm, enough to exercise
// load, page counting and stamping.
const minimalPDFBase64 = `JVBERi0xLjQKJeLjz9MKMSAwIG9iago8PCAvVHlwZSAvQ2F0YWxvZyAvUGFnZXMgMiAwIFIgPj4K
ZW5kb2JqCjIgMCBvYmoKPDwgL1R5cGUgL1BhZ2VzIC9LaWRzIFszIDAgUl0gL0NvdW50IDEgPj4K
ZW5kb2JqCjMgMCBvYmoKPDwgL1R5cGUgL1BhZ2UgL1BhcmVudCAyIDAgUiAvTWVkaWFCb3ggWzAg
MCA1OTUgODQyXSAvQ29udGVudHMgNCAwIFIgL1Jlc291cmNlcyA8PCA+PiA+PgplbmRvYmoKNCAw
IG9iago8PCAvTGVuZ3RoIDMgPj4Kc3RyZWFtCnEgUQplbmRzdHJlYW0KZW5kb2JqCnhyZWYKMCA1
CjAwMDAwMDAwMDAgNjU1MzUgZiAKMDAwMDAwMDAxNSAwMDAwMCBuIAowMDAwMDAwMDY0IDAwMDAw
IG4gCjAwMDAwMDAxMjEgMDAwMDAgbiAKMDAwMDAwMDIyNSAwMDAwMCBuIAp0cmFpbGVyCjw8IC9T
aXplIDUgL1Jvb3QgMSAwIFIgPj4Kc3RhcnR4cmVmCjI3NwolJUVPRgo=`

func minimalPDF(t *testing.T) []byte {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(minimalPDFBase64)
	if err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	return data
}

func TestLoad_ValidPDF(t *testing.T) {
	doc, err := Load(minimalPDF(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	pages, err := doc.PageCount()
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if pages != 1 {
		t.Errorf("expected 1 page, got %d", pages)
	}
}

func TestLoad_RejectsGarbage(t *testing.T) {
	if _, err := Load([]byte("ceci n'est pas un pdf")); err == nil {
		t.Error("expected an error for non-PDF bytes")
	}
}

func TestFields_NoFormYieldsEmptyMap(t *testing.T) {
	doc, err := Load(minimalPDF(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	fields, err := doc.Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("expected no fields, got %v", fields)
	}
}

func TestSetFields_EmptyIsNoOp(t *testing.T) {
	doc, err := Load(minimalPDF(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	before := doc.Bytes()

	if err := doc.SetFields(nil); err != nil {
		t.Fatalf("SetFields: %v", err)
	}
	if !bytes.Equal(doc.Bytes(), before) {
		t.Error("empty SetFields must not touch the content")
	}
}

func TestStamp_RewritesDocument(t *testing.T) {
	doc, err := Load(minimalPDF(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	before := append([]byte(nil), doc.Bytes()...)

	if err := doc.Stamp("Terminé le 12/03/2026"); err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if bytes.Equal(doc.Bytes(), before) {
		t.Error("expected stamped bytes to differ")
	}

	// The stamped document is still a readable one-page PDF.
	stamped, err := Load(doc.Bytes())
	if err != nil {
		t.Fatalf("reloading stamped document: %v", err)
	}
	if pages, err := stamped.PageCount(); err != nil || pages != 1 {
		t.Errorf("stamped page count = %d err=%v", pages, err)
	}
}
