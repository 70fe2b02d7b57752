package traces

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"eudrgate/internal/domain"
)

// Wire schemas. These are the only shapes this package accepts; anything that
// does not decode into them is a fault, not a guess.

type lookupResponse struct {
	Status             string `json:"status"`
	ReferenceNumber    string `json:"referenceNumber"`
	VerificationNumber string `json:"verificationNumber"`
}

type submitResponse struct {
	Identifier         string `json:"identifier"`
	ReferenceNumber    string `json:"referenceNumber"`
	VerificationNumber string `json:"verificationNumber"`
	Status             string `json:"status"`
}

type retrievalResponse struct {
	ReferenceNumber    string `json:"referenceNumber"`
	VerificationNumber string `json:"verificationNumber"`
	Status             string `json:"status"`
}

// mapLookupResponse converts an HTTP status and body into the tagged lookup
// variant. Pure: same input, same result.
func mapLookupResponse(statusCode int, body []byte) LookupResult {
	switch {
	case statusCode == http.StatusNotFound:
		return NotFound()
	case statusCode < 200 || statusCode >= 300:
		return Fault(fmt.Sprintf("registry returned status %d", statusCode))
	}
	var resp lookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Fault(fmt.Sprintf("malformed lookup response: %v", err))
	}
	if resp.Status == "" {
		return Fault("lookup response missing status")
	}
	return Found(normalizeStatus(resp.Status))
}

// mapSubmitResponse converts a submission response into a receipt. A missing
// identifier is an error because the pipeline cannot reconcile without it;
// missing business numbers are expected (asynchronous issuance).
func mapSubmitResponse(statusCode int, body []byte) (SubmissionReceipt, error) {
	if statusCode < 200 || statusCode >= 300 {
		return SubmissionReceipt{}, fmt.Errorf("registry returned status %d", statusCode)
	}
	var resp submitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return SubmissionReceipt{}, fmt.Errorf("malformed submit response: %w", err)
	}
	if resp.Identifier == "" {
		return SubmissionReceipt{}, fmt.Errorf("submit response missing identifier")
	}
	receipt := SubmissionReceipt{RemoteIdentifier: resp.Identifier}
	if resp.ReferenceNumber != "" {
		receipt.ReferenceNumber = ptr(resp.ReferenceNumber)
	}
	if resp.VerificationNumber != "" {
		receipt.VerificationNumber = ptr(resp.VerificationNumber)
	}
	if resp.Status != "" {
		receipt.Status = normalizeStatus(resp.Status)
	}
	return receipt, nil
}

// mapRetrievalResponse converts a fetch-by-identifier response. Absent
// numbers mean issuance is still pending, which is not an error.
func mapRetrievalResponse(statusCode int, body []byte) (RetrievalResult, error) {
	if statusCode < 200 || statusCode >= 300 {
		return RetrievalResult{}, fmt.Errorf("registry returned status %d", statusCode)
	}
	var resp retrievalResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return RetrievalResult{}, fmt.Errorf("malformed retrieval response: %w", err)
	}
	result := RetrievalResult{Status: normalizeStatus(resp.Status)}
	if resp.ReferenceNumber != "" {
		result.ReferenceNumber = ptr(resp.ReferenceNumber)
	}
	if resp.VerificationNumber != "" {
		result.VerificationNumber = ptr(resp.VerificationNumber)
	}
	return result, nil
}

func normalizeStatus(s string) domain.StatementStatus {
	return domain.StatementStatus(strings.ToUpper(strings.TrimSpace(s)))
}

func ptr(s string) *string { return &s }
