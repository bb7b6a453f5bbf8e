// Package myfatoorah is a client for the MyFatoorah hosted payments API,
// covering the three calls the portal needs: listing payment methods,
// creating an invoice, and checking an invoice's status.
package myfatoorah

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Rhymond/go-money"

	"github.com/gulf-dental-association/member-portal/registration"
)

var _ registration.PaymentGateway = &Client{}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL string, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// envelope is the wrapper MyFatoorah puts around every response.
type envelope struct {
	IsSuccess bool            `json:"IsSuccess"`
	Message   string          `json:"Message"`
	Data      json.RawMessage `json:"Data"`
}

type initiatePaymentRequest struct {
	InvoiceAmount float64 `json:"InvoiceAmount"`
	CurrencyIso   string  `json:"CurrencyIso"`
}

type initiatePaymentData struct {
	PaymentMethods []paymentMethod `json:"PaymentMethods"`
}

type paymentMethod struct {
	PaymentMethodId   int64   `json:"PaymentMethodId"`
	PaymentMethodEn   string  `json:"PaymentMethodEn"`
	ImageUrl          string  `json:"ImageUrl"`
	ServiceCharge     float64 `json:"ServiceCharge"`
	TotalAmount       float64 `json:"TotalAmount"`
	CurrencyIso       string  `json:"CurrencyIso"`
	IsDirectPayment   bool    `json:"IsDirectPayment"`
	PaymentCurrencyId int64   `json:"PaymentCurrencyId"`
}

func (c *Client) InitiatePayment(ctx context.Context, amount *money.Money) ([]registration.PaymentMethod, error) {
	var data initiatePaymentData
	err := c.post(ctx, "/v2/InitiatePayment", initiatePaymentRequest{
		InvoiceAmount: amount.AsMajorUnits(),
		CurrencyIso:   amount.Currency().Code,
	}, &data)
	if err != nil {
		return nil, err
	}

	methods := make([]registration.PaymentMethod, 0, len(data.PaymentMethods))
	for _, m := range data.PaymentMethods {
		methods = append(methods, registration.PaymentMethod{
			ID:              m.PaymentMethodId,
			Name:            m.PaymentMethodEn,
			ImageURL:        m.ImageUrl,
			ServiceCharge:   m.ServiceCharge,
			TotalAmount:     m.TotalAmount,
			Currency:        m.CurrencyIso,
			IsDirectPayment: m.IsDirectPayment,
		})
	}
	return methods, nil
}

type executePaymentRequest struct {
	PaymentMethodId    int64         `json:"PaymentMethodId"`
	InvoiceValue       float64       `json:"InvoiceValue"`
	DisplayCurrencyIso string        `json:"DisplayCurrencyIso"`
	CustomerName       string        `json:"CustomerName"`
	CustomerEmail      string        `json:"CustomerEmail"`
	MobileCountryCode  string        `json:"MobileCountryCode,omitempty"`
	CustomerMobile     string        `json:"CustomerMobile,omitempty"`
	CustomerReference  string        `json:"CustomerReference"`
	Language           string        `json:"Language"`
	CallBackUrl        string        `json:"CallBackUrl"`
	ErrorUrl           string        `json:"ErrorUrl"`
	InvoiceItems       []invoiceItem `json:"InvoiceItems"`
}

type invoiceItem struct {
	ItemName  string  `json:"ItemName"`
	Quantity  int     `json:"Quantity"`
	UnitPrice float64 `json:"UnitPrice"`
}

type executePaymentData struct {
	InvoiceId  int64  `json:"InvoiceId"`
	PaymentURL string `json:"PaymentURL"`
}

func (c *Client) ExecutePayment(ctx context.Context, params registration.ExecutePaymentParams) (registration.PaymentInfo, error) {
	amount := params.Amount.AsMajorUnits()
	var data executePaymentData
	err := c.post(ctx, "/v2/ExecutePayment", executePaymentRequest{
		PaymentMethodId:    params.MethodID,
		InvoiceValue:       amount,
		DisplayCurrencyIso: params.Amount.Currency().Code,
		CustomerName:       params.CustomerName,
		CustomerEmail:      params.CustomerEmail,
		CustomerMobile:     params.CustomerMobile,
		CustomerReference:  params.Reference,
		Language:           "en",
		CallBackUrl:        params.CallbackURL,
		ErrorUrl:           params.ErrorURL,
		InvoiceItems: []invoiceItem{
			{ItemName: params.ItemName, Quantity: 1, UnitPrice: amount},
		},
	}, &data)
	if err != nil {
		return registration.PaymentInfo{}, err
	}

	return registration.PaymentInfo{
		PaymentURL: data.PaymentURL,
		InvoiceID:  strconv.FormatInt(data.InvoiceId, 10),
	}, nil
}

type paymentStatusRequest struct {
	Key     string `json:"Key"`
	KeyType string `json:"KeyType"`
}

type paymentStatusData struct {
	InvoiceStatus string `json:"InvoiceStatus"`
}

func (c *Client) PaymentStatus(ctx context.Context, invoiceID string) (registration.InvoiceStatus, error) {
	var data paymentStatusData
	err := c.post(ctx, "/v2/GetPaymentStatus", paymentStatusRequest{
		Key:     invoiceID,
		KeyType: "InvoiceId",
	}, &data)
	if err != nil {
		return "", err
	}
	return registration.InvoiceStatus(data.InvoiceStatus), nil
}

func (c *Client) post(ctx context.Context, path string, reqBody any, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, env.Message)
	}
	if !env.IsSuccess {
		return fmt.Errorf("%s was not successful: %s", path, env.Message)
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode data from %s: %w", path, err)
	}
	return nil
}
