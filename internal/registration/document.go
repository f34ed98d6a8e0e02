// File: internal/registration/document.go
package registration

import (
	"fmt"

	"marketplace_onboarding/internal/common"
	"marketplace_onboarding/internal/marketplace"
)

// DocumentType names one of the three verification documents.
type DocumentType string

const (
	DocBusinessLicense DocumentType = "business_license"
	DocTaxCertificate  DocumentType = "tax_certificate"
	DocFactoryPhoto    DocumentType = "factory_photo"
)

// DocumentTypes lists the documents in the order they are uploaded and reported.
var DocumentTypes = []DocumentType{DocBusinessLicense, DocTaxCertificate, DocFactoryPhoto}

func ParseDocumentType(raw string) (DocumentType, error) {
	for _, dt := range DocumentTypes {
		if string(dt) == raw {
			return dt, nil
		}
	}
	return "", common.ErrBadRequest.WithDetails(fmt.Sprintf("Unknown document type %q.", raw))
}

// URLField is the key the document's URL is reported under.
func (d DocumentType) URLField() string {
	return string(d) + "_url"
}

func (d DocumentType) label() string {
	switch d {
	case DocBusinessLicense:
		return "business license"
	case DocTaxCertificate:
		return "tax certificate"
	case DocFactoryPhoto:
		return "factory photo"
	}
	return string(d)
}

// DocumentURLs maps document types to their uploaded URLs.
type DocumentURLs map[DocumentType]string

// Complete reports whether all three documents have a URL.
func (u DocumentURLs) Complete() bool {
	for _, dt := range DocumentTypes {
		if u[dt] == "" {
			return false
		}
	}
	return true
}

// Missing lists document types without a URL, in upload order.
func (u DocumentURLs) Missing() []DocumentType {
	var out []DocumentType
	for _, dt := range DocumentTypes {
		if u[dt] == "" {
			out = append(out, dt)
		}
	}
	return out
}

// Fields returns the URLs keyed by their reported field names.
func (u DocumentURLs) Fields() map[string]string {
	if len(u) == 0 {
		return nil
	}
	out := make(map[string]string, len(u))
	for dt, url := range u {
		if url != "" {
			out[dt.URLField()] = url
		}
	}
	return out
}

// Ordered returns the URLs in upload order, skipping missing ones.
func (u DocumentURLs) Ordered() []string {
	var out []string
	for _, dt := range DocumentTypes {
		if url := u[dt]; url != "" {
			out = append(out, url)
		}
	}
	return out
}

func (u DocumentURLs) toMarketplace() marketplace.Documents {
	return marketplace.Documents{
		BusinessLicenseURL: u[DocBusinessLicense],
		TaxCertificateURL:  u[DocTaxCertificate],
		FactoryPhotoURL:    u[DocFactoryPhoto],
	}
}
