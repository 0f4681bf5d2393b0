package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Product is one product returned by the partner product API. URL-bearing
// fields arrive base64-encoded.
type Product struct {
	ID                        string  `json:"id"`
	Name                      string  `json:"name"`
	AltName                   string  `json:"altName"`
	Abbreviation              string  `json:"abbreviation"`
	AltAbbreviation           string  `json:"altAbbreviation"`
	Blurb                     string  `json:"blurb"`
	Language                  string  `json:"language"`
	SubjectMatter             string  `json:"subjectMatter"`
	AltSubjectMatter          string  `json:"altSubjectMatter"`
	AltSubjectMatter1         string  `json:"altSubjectMatter1"`
	UniversityAbbreviation    string  `json:"universityAbbreviation"`
	AltUniversityAbbreviation string  `json:"altUniversityAbbreviation"`
	CardURL                   string  `json:"cardUrl"`
	EdxRedirectURL            string  `json:"edxRedirectUrl"`
	EdxPlpURL                 string  `json:"edxPlpUrl"`
	DurationWeeks             int     `json:"durationWeeks"`
	Effort                    string  `json:"effort"`
	Introduction              string  `json:"introduction"`
	IsThisCourseForYou        string  `json:"isThisCourseForYou"`
	WhatWillSetYouApart       string  `json:"whatWillSetYouApart"`
	VideoURL                  string  `json:"videoURL"`
	LcfURL                    string  `json:"lcfURL"`
	LogoURL                   string  `json:"logoUrl"`
	MetaTitle                 string  `json:"metaTitle"`
	MetaDescription           string  `json:"metaDescription"`
	MetaKeywords              string  `json:"metaKeywords"`
	Slug                      string  `json:"slug"`
	ProductType               string  `json:"productType"`
	ProspectusURL             string  `json:"prospectusUrl"`
	EdxTaxiFormID             *string `json:"edxTaxiFormId"`

	Variant             *Variant  `json:"variant"`
	Variants            []Variant `json:"variants"`
	FutureVariants      []Variant `json:"futureVariants"`
	CustomPresentations []Variant `json:"customPresentations"`

	Curriculum   *Curriculum   `json:"curriculum"`
	Testimonials []Testimonial `json:"testimonials"`
	FAQs         []FAQ         `json:"faqs"`
	Certificate  *Certificate  `json:"certificate"`
	Stats        *Stats        `json:"stats"`
}

// AllVariants flattens the variant, variants, futureVariants and
// customPresentations shapes into one list.
func (p *Product) AllVariants() []Variant {
	var all []Variant
	if p.Variant != nil {
		all = append(all, *p.Variant)
	}
	all = append(all, p.Variants...)
	for _, v := range p.FutureVariants {
		v.Future = true
		all = append(all, v)
	}
	all = append(all, p.CustomPresentations...)
	return all
}

// Variant is one scheduled presentation of a product.
type Variant struct {
	ID                string      `json:"id"`
	Course            string      `json:"course"`
	Currency          string      `json:"currency"`
	NormalPrice       json.Number `json:"normalPrice"`
	Discount          json.Number `json:"discount"`
	FinalPrice        json.Number `json:"finalPrice"`
	RegCloseDate      string      `json:"regCloseDate"`
	FinalRegCloseDate string      `json:"finalRegCloseDate"`
	StartDate         string      `json:"startDate"`
	EndDate           string      `json:"endDate"`
	WebsiteVisibility string      `json:"websiteVisibility"`
	Status            string      `json:"status"`
	EnterprisePrice   json.Number `json:"enterprisePriceUsd"`

	// Future marks variants sourced from the futureVariants list.
	Future bool `json:"-"`
}

// Restricted reports whether the variant is a private B2B presentation.
func (v *Variant) Restricted() bool {
	return strings.EqualFold(v.WebsiteVisibility, "private")
}

// Scheduled reports whether the variant is announced but not yet active.
func (v *Variant) Scheduled() bool {
	return v.Future || strings.EqualFold(v.Status, "scheduled")
}

type Curriculum struct {
	Heading string   `json:"heading"`
	Blurb   string   `json:"blurb"`
	Modules []Module `json:"modules"`
}

type Module struct {
	ModuleNumber int    `json:"module_number"`
	Heading      string `json:"heading"`
	Description  string `json:"description"`
}

type Testimonial struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type FAQ struct {
	ID       string `json:"id"`
	Headline string `json:"headline"`
	Blurb    string `json:"blurb"`
}

type Certificate struct {
	Headline string `json:"headline"`
	Blurb    string `json:"blurb"`
}

type Stats struct {
	Stat1      string `json:"stat1"`
	Stat1Blurb string `json:"stat1Blurb"`
	Stat2      string `json:"stat2"`
	Stat2Blurb string `json:"stat2Blurb"`
}

// ProductAPIClient fetches the partner's product list, either with a
// caller-supplied bearer token or via OAuth client credentials.
type ProductAPIClient interface {
	GetProducts(ctx context.Context) ([]Product, error)
}

type productAPIClient struct {
	productURL   string
	tokenURL     string
	clientID     string
	clientSecret string
	authToken    string
	httpClient   *http.Client
}

// NewProductAPIClient builds a client that authenticates with the fixed
// authToken when set, otherwise with client credentials against tokenURL.
func NewProductAPIClient(productURL, tokenURL, clientID, clientSecret, authToken string) ProductAPIClient {
	return &productAPIClient{
		productURL:   productURL,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		authToken:    authToken,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *productAPIClient) GetProducts(ctx context.Context) ([]Product, error) {
	token := c.authToken
	if token == "" {
		fetched, err := c.fetchToken(ctx)
		if err != nil {
			return nil, err
		}
		token = fetched
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.productURL+"/?detail=2", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build product api request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product api responded with status %d", resp.StatusCode)
	}

	var payload struct {
		Products []Product `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode product api response: %w", err)
	}

	log.Info().Int("count", len(payload.Products)).Msg("Fetched products from the partner API.")
	return payload.Products, nil
}

func (c *productAPIClient) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint responded with status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	return payload.AccessToken, nil
}
