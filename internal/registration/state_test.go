package registration

import (
	"net/http"
	"sync"
	"testing"

	"marketplace_onboarding/internal/common"
	"marketplace_onboarding/internal/draft"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw        string
		want       Role
		normalized string
	}{
		{"seller", RoleSeller, "seller"},
		{"Buyer", RoleBuyer, "buyer"},
		{"customer", RoleCustomer, "user"},
		{"user", RoleCustomer, "user"},
	}
	for _, tt := range tests {
		role, err := ParseRole(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, role)
		assert.Equal(t, tt.normalized, role.Normalize())
	}

	_, err := ParseRole("admin")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestRoleRoutes(t *testing.T) {
	assert.Equal(t, "/seller/register", RoleSeller.Step1Route())
	assert.Equal(t, "/seller/register/step2", RoleSeller.Step2Route())
	assert.Equal(t, "/seller/register/step3", RoleSeller.Step3Route())
	assert.Equal(t, "/seller/dashboard", RoleSeller.DoneRoute())
	assert.Equal(t, "/buyer/register", RoleBuyer.Step1Route())
	assert.Equal(t, "/buyer/dashboard", RoleBuyer.DoneRoute())
	assert.Equal(t, "/register", RoleCustomer.Step1Route())
	assert.Equal(t, "/", RoleCustomer.DoneRoute())
	assert.False(t, RoleCustomer.HasProfile())
}

func TestTransition(t *testing.T) {
	allowed := []struct {
		from State
		ev   Event
		to   State
	}{
		{StateEmpty, EventCredentialsSaved, StateStep1Filled},
		{StateEmpty, EventCustomerRegistered, StateDone},
		{StateStep1Filled, EventProfileSaved, StateStep2Filled},
		{StateStep2Filled, EventSubmitStarted, StateSubmitting},
		{StateSubmitting, EventSubmitSucceeded, StateDone},
		{StateSubmitting, EventSubmitFailed, StateFailed},
		{StateFailed, EventRetry, StateStep2Filled},
		{StateStep2Filled, EventCredentialsSaved, StateStep1Filled},
		{StateStep2Filled, EventProfileSaved, StateStep2Filled},
	}
	for _, tt := range allowed {
		got, err := Transition(tt.from, tt.ev)
		require.NoError(t, err, "%s on %s", tt.from, tt.ev)
		assert.Equal(t, tt.to, got)
	}

	rejected := []struct {
		from State
		ev   Event
	}{
		{StateEmpty, EventProfileSaved},
		{StateEmpty, EventSubmitStarted},
		{StateStep1Filled, EventSubmitStarted},
		{StateSubmitting, EventCredentialsSaved},
		{StateDone, EventSubmitStarted},
		{StateDone, EventRetry},
	}
	for _, tt := range rejected {
		got, err := Transition(tt.from, tt.ev)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s on %s", tt.from, tt.ev)
		assert.Equal(t, tt.from, got)
	}
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateEmpty, StateOf(nil))
	assert.Equal(t, StateEmpty, StateOf(&draft.Draft{Role: "seller"}))
	assert.Equal(t, StateStep1Filled, StateOf(&draft.Draft{Role: "seller", Step1: &draft.Credentials{}}))
	assert.Equal(t, StateStep2Filled, StateOf(&draft.Draft{Role: "seller", Step1: &draft.Credentials{}, Step2: &draft.CompanyProfile{}}))
}

func TestDocumentURLs(t *testing.T) {
	urls := DocumentURLs{DocTaxCertificate: "https://cdn/tax.pdf"}
	assert.False(t, urls.Complete())
	assert.Equal(t, []DocumentType{DocBusinessLicense, DocFactoryPhoto}, urls.Missing())
	assert.Equal(t, map[string]string{"tax_certificate_url": "https://cdn/tax.pdf"}, urls.Fields())

	urls[DocBusinessLicense] = "https://cdn/bl.pdf"
	urls[DocFactoryPhoto] = "https://cdn/fp.jpg"
	assert.True(t, urls.Complete())
	assert.Empty(t, urls.Missing())
	assert.Equal(t, []string{"https://cdn/bl.pdf", "https://cdn/tax.pdf", "https://cdn/fp.jpg"}, urls.Ordered())

	_, err := ParseDocumentType("passport")
	assert.Error(t, err)
}

func TestStaging(t *testing.T) {
	st := NewStaging(0)

	st.Set("s1", DocBusinessLicense, "https://cdn/a.pdf")
	st.Set("s1", DocBusinessLicense, "https://cdn/b.pdf")
	st.Set("s2", DocTaxCertificate, "https://cdn/other.pdf")
	assert.Equal(t, DocumentURLs{DocBusinessLicense: "https://cdn/b.pdf"}, st.Get("s1"))

	got := st.Get("s1")
	got[DocFactoryPhoto] = "mutated"
	assert.NotContains(t, st.Get("s1"), DocFactoryPhoto)

	st.Clear("s1", DocBusinessLicense)
	assert.Empty(t, st.Get("s1"))
	assert.Len(t, st.Get("s2"), 1)

	st.Reset("s2")
	assert.Empty(t, st.Get("s2"))
}

func TestStaging_IndependentSlotsUnderConcurrency(t *testing.T) {
	st := NewStaging(0)
	var wg sync.WaitGroup
	for _, dt := range DocumentTypes {
		dt := dt
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				st.Set("s1", dt, "https://cdn/"+string(dt))
			}
		}()
	}
	wg.Wait()
	assert.True(t, st.Get("s1").Complete())
}
