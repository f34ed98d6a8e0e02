// File: internal/marketplace/model.go
package marketplace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
)

// RegisterRequest is the body of POST /auth/register. Sellers and buyers send
// confirm_password, customers send mobileNumber.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
	MobileNumber    string `json:"mobileNumber,omitempty"`
	Role            string `json:"role"`
}

// RegisteredUser is what the register call tells us about the new account.
type RegisteredUser struct {
	ID         string
	Name       string
	Email      string
	Role       string
	IsVarified *bool // spelled as the API spells it
	Token      string
}

// PendingVerification reports whether the API explicitly marked the account unverified.
func (u *RegisteredUser) PendingVerification() bool {
	return u != nil && u.IsVarified != nil && !*u.IsVarified
}

// Documents carries the uploaded verification document URLs.
type Documents struct {
	BusinessLicenseURL string `json:"business_license_url"`
	TaxCertificateURL  string `json:"tax_certificate_url"`
	FactoryPhotoURL    string `json:"factory_photo_url"`
}

// SellerProfileRequest is the body of POST /seller.
type SellerProfileRequest struct {
	CompanyName  string    `json:"company_name"`
	Country      string    `json:"country"`
	City         string    `json:"city"`
	BusinessType string    `json:"business_type"`
	Documents    Documents `json:"documents"`
}

// BuyerProfileRequest is the body of POST /buyer.
type BuyerProfileRequest struct {
	CompanyName string    `json:"company_name"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	Documents   Documents `json:"documents"`
}

// File is one document to upload. Open may be called more than once.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FileFromHeader adapts a file received in a multipart request.
func FileFromHeader(fh *multipart.FileHeader) File {
	return File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FileFromBytes wraps in-memory content, mostly for tests and CLI use.
func FileFromBytes(name, contentType string, data []byte) File {
	return File{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// flexibleID accepts ids sent either as JSON strings or numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	*f = flexibleID(strings.TrimSpace(string(b)))
	return nil
}

// registerEnvelope covers the shapes the register endpoint has been seen to return:
// a flat user, {user, token}, or either of those wrapped in data.
type registerEnvelope struct {
	ID          flexibleID        `json:"id"`
	UnderID     flexibleID        `json:"_id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Role        string            `json:"role"`
	IsVarified  *bool             `json:"is_varified"`
	Token       string            `json:"token"`
	AccessToken string            `json:"access_token"`
	User        *registerEnvelope `json:"user"`
	Data        *registerEnvelope `json:"data"`
}

func (e *registerEnvelope) flatten(into *RegisteredUser) {
	if e == nil {
		return
	}
	if into.ID == "" {
		into.ID = string(e.ID)
		if into.ID == "" {
			into.ID = string(e.UnderID)
		}
	}
	if into.Name == "" {
		into.Name = e.Name
	}
	if into.Email == "" {
		into.Email = e.Email
	}
	if into.Role == "" {
		into.Role = e.Role
	}
	if into.IsVarified == nil {
		into.IsVarified = e.IsVarified
	}
	if into.Token == "" {
		into.Token = e.Token
		if into.Token == "" {
			into.Token = e.AccessToken
		}
	}
	e.User.flatten(into)
	e.Data.flatten(into)
}

func decodeRegisteredUser(body []byte) (*RegisteredUser, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return &RegisteredUser{}, nil
	}
	var env registerEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decoding register response: %v", ErrUnexpectedResponse, err)
	}
	var u RegisteredUser
	env.flatten(&u)
	return &u, nil
}

// uploadEnvelope covers {urls}, {url} and either wrapped in data.
type uploadEnvelope struct {
	URLs []string        `json:"urls"`
	URL  string          `json:"url"`
	Data json.RawMessage `json:"data"`
}

func decodeUploadedURLs(body []byte) ([]string, error) {
	var env uploadEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decoding upload response: %v", ErrUnexpectedResponse, err)
	}
	if len(env.URLs) > 0 {
		return env.URLs, nil
	}
	if env.URL != "" {
		return []string{env.URL}, nil
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		var list []string
		if err := json.Unmarshal(env.Data, &list); err == nil && len(list) > 0 {
			return list, nil
		}
		var inner uploadEnvelope
		if err := json.Unmarshal(env.Data, &inner); err == nil {
			if len(inner.URLs) > 0 {
				return inner.URLs, nil
			}
			if inner.URL != "" {
				return []string{inner.URL}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: upload response carried no urls", ErrUnexpectedResponse)
}
