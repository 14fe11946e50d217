package threescale

import "encoding/xml"

// Wire types for the 3scale Account Management XML API. Fields the flow never
// reads are omitted; the decoder ignores unknown elements.

type accountXML struct {
	XMLName xml.Name `xml:"account"`
	ID      string   `xml:"id"`
	OrgName string   `xml:"org_name"`
}

type servicesXML struct {
	XMLName  xml.Name     `xml:"services"`
	Services []serviceXML `xml:"service"`
}

type serviceXML struct {
	ID            string `xml:"id"`
	Name          string `xml:"name"`
	BackendAPIURL string `xml:"backend_api_url"`
}

type plansXML struct {
	XMLName xml.Name  `xml:"plans"`
	Plans   []planXML `xml:"plan"`
}

type planXML struct {
	ID        string `xml:"id"`
	Name      string `xml:"name"`
	ServiceID string `xml:"service_id"`
}

type applicationsXML struct {
	XMLName      xml.Name         `xml:"applications"`
	Applications []applicationXML `xml:"application"`
}

type applicationXML struct {
	XMLName   xml.Name `xml:"application"`
	ID        string   `xml:"id"`
	Name      string   `xml:"name"`
	UserKey   string   `xml:"user_key"`
	ServiceID string   `xml:"service_id"`
	Plan      planXML  `xml:"plan"`
}
