package payments

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	config "github.com/mridulaoc/life_academy/configs"
)

type RazorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type RazorpayPayment struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

type RazorpayRefund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

var httpClient = &http.Client{Timeout: 15 * time.Second}

// CreateRemoteOrder mints an order on the gateway. Amount is in integer minor
// units (paise); the caller owns the conversion from stored major units.
func CreateRemoteOrder(amountMinor int64, currency string) (*RazorpayOrder, error) {
	apiBase := config.Config("RAZORPAY_API_BASE_URL")

	payload := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/v1/orders", apiBase), bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(config.Config("RAZORPAY_KEY_ID"), config.Config("RAZORPAY_KEY_SECRET"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to create gateway order: %s", string(respBody))
	}

	var order RazorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

func FetchPayment(paymentID string) (*RazorpayPayment, error) {
	apiBase := config.Config("RAZORPAY_API_BASE_URL")

	req, err := http.NewRequest("GET", fmt.Sprintf("%s/v1/payments/%s", apiBase, paymentID), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(config.Config("RAZORPAY_KEY_ID"), config.Config("RAZORPAY_KEY_SECRET"))

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to fetch payment %s: %s", paymentID, string(respBody))
	}

	var payment RazorpayPayment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func RefundPayment(paymentID string, amountMinor int64) (*RazorpayRefund, error) {
	apiBase := config.Config("RAZORPAY_API_BASE_URL")

	payload := map[string]interface{}{
		"amount": amountMinor,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/v1/payments/%s/refund", apiBase, paymentID), bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(config.Config("RAZORPAY_KEY_ID"), config.Config("RAZORPAY_KEY_SECRET"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to refund payment %s: %s", paymentID, string(respBody))
	}

	var refund RazorpayRefund
	if err := json.NewDecoder(resp.Body).Decode(&refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

// Signature computes the hex HMAC-SHA256 of "orderID|paymentID" under the
// gateway key secret.
func Signature(externalOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(config.Config("RAZORPAY_KEY_SECRET")))
	mac.Write([]byte(externalOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(externalOrderID, paymentID, signature string) bool {
	expected := Signature(externalOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
