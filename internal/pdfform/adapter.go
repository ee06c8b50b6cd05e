// Package pdfform edits AcroForm fields of traceability sheets and
// protocol copies held fully in memory.
package pdfform

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Document wraps one PDF's bytes. Mutations replace the bytes, so a
// failed edit leaves the previous content intact.
type Document struct {
	data []byte
	conf *model.Configuration
}

// Load validates the bytes as a PDF and wraps them.
func Load(data []byte) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if _, err := api.PageCount(bytes.NewReader(data), conf); err != nil {
		return nil, fmt.Errorf("not a readable pdf: %w", err)
	}
	return &Document{data: data, conf: conf}, nil
}

// Bytes returns the current content.
func (d *Document) Bytes() []byte {
	return d.data
}

// PageCount returns the page count of the current content.
func (d *Document) PageCount() (int, error) {
	return api.PageCount(bytes.NewReader(d.data), d.conf)
}

// formFile mirrors the pdfcpu form JSON exchanged by export and fill.
type formFile struct {
	Forms []formBlock `json:"forms"`
}

type formBlock struct {
	TextFields []textField `json:"textfield,omitempty"`
}

type textField struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Fields exports the document's text field values keyed by field id (the
// PDF field name). A document without an AcroForm yields an empty map.
func (d *Document) Fields() (map[string]string, error) {
	var buf bytes.Buffer
	if err := api.ExportFormJSON(bytes.NewReader(d.data), &buf, "", d.conf); err != nil {
		return map[string]string{}, nil
	}

	var exported formFile
	if err := json.Unmarshal(buf.Bytes(), &exported); err != nil {
		return nil, fmt.Errorf("decoding exported form: %w", err)
	}

	fields := make(map[string]string)
	for _, form := range exported.Forms {
		for _, tf := range form.TextFields {
			fields[tf.ID] = tf.Value
		}
	}
	return fields, nil
}

// SetFields writes the given text field values into the form, matched by
// field id. Unknown ids are rejected by pdfcpu and surface as errors.
func (d *Document) SetFields(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	block := formBlock{}
	for id, value := range values {
		block.TextFields = append(block.TextFields, textField{ID: id, Value: value})
	}
	payload, err := json.Marshal(formFile{Forms: []formBlock{block}})
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := api.FillForm(bytes.NewReader(d.data), bytes.NewReader(payload), &out, d.conf); err != nil {
		return fmt.Errorf("filling form: %w", err)
	}
	d.data = out.Bytes()
	return nil
}

// Stamp lays a small text annotation over the first page, used for the
// signed-off marker on finished sheets.
func (d *Document) Stamp(text string) error {
	wm, err := api.TextWatermark(text, "points:10, scale:1 abs, pos:bc, off:0 10, op:.7", true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("building stamp: %w", err)
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(d.data), &out, []string{"1"}, wm, d.conf); err != nil {
		return fmt.Errorf("stamping: %w", err)
	}
	d.data = out.Bytes()
	return nil
}
