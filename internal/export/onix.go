package export

import (
	"encoding/xml"
	"fmt"
	"io"
)

const (
	onixNamespace = "http://ns.editeur.org/onix/3.0/reference"
	eudrNamespace = "http://www.emmelibri.it/eudr"
	xsiNamespace  = "http://www.w3.org/2001/XMLSchema-instance"
)

type onixMessage struct {
	XMLName        xml.Name      `xml:"ONIXMessage"`
	Namespace      string        `xml:"xmlns,attr"`
	EudrNamespace  string        `xml:"xmlns:eudr,attr"`
	XSINamespace   string        `xml:"xmlns:xsi,attr"`
	SchemaLocation string        `xml:"xsi:schemaLocation,attr"`
	Products       []onixProduct `xml:"Product"`
}

type onixProduct struct {
	RecordReference string        `xml:"RecordReference"`
	Statements      []onixDDSInfo `xml:"eudr:DDSInfo"`
}

type onixDDSInfo struct {
	ReferenceNumber    string `xml:"eudr:ReferenceNumber"`
	VerificationNumber string `xml:"eudr:VerificationNumber"`
	RemoteIdentifier   string `xml:"eudr:RegistryIdentifier,omitempty"`
}

// WriteONIX renders one cumulative ONIX 3.0 message: a Product element per
// covered code, due-diligence numbers carried in the eudr extension
// namespace. Statements still awaiting issuance expose the registry
// identifier instead.
func WriteONIX(w io.Writer, mapping *ProductMapping) error {
	msg := onixMessage{
		Namespace:      onixNamespace,
		EudrNamespace:  eudrNamespace,
		XSINamespace:   xsiNamespace,
		SchemaLocation: eudrNamespace + " schemas/eudr-extension.xsd",
	}
	for _, code := range mapping.Codes {
		product := onixProduct{RecordReference: code}
		for _, st := range mapping.ByCode[code] {
			info := onixDDSInfo{
				ReferenceNumber:    st.ReferenceNumber,
				VerificationNumber: st.VerificationNumber,
			}
			if st.ReferenceNumber == "" {
				info.RemoteIdentifier = st.RemoteIdentifier
			}
			product.Statements = append(product.Statements, info)
		}
		msg.Products = append(msg.Products, product)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write onix header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(msg); err != nil {
		return fmt.Errorf("encode onix message: %w", err)
	}
	return enc.Close()
}
