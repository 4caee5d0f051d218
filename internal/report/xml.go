package report

import "encoding/xml"

// HostXML is one host element of a report. Every attribute is kept as the
// raw string so that a host with odd values still yields a record.
type HostXML struct {
	EndTime   string        `xml:"endtime,attr"`
	Status    []StatusXML   `xml:"status"`
	Addresses []AddressXML  `xml:"address"`
	Hostnames []HostnameXML `xml:"hostnames>hostname"`
	Ports     []PortXML     `xml:"ports>port"`
	OS        []OSXML       `xml:"os"`
}

// StatusXML is the reachability state of a host.
type StatusXML struct {
	State string `xml:"state,attr"`
}

// AddressXML is an address of a host. The first one is the network
// address; the second, when present, is usually the MAC.
type AddressXML struct {
	Addr     string `xml:"addr,attr"`
	AddrType string `xml:"addrtype,attr"`
	Vendor   string `xml:"vendor,attr"`
}

// HostnameXML is a resolved name of a host.
type HostnameXML struct {
	Name string `xml:"name,attr"`
}

// PortXML is one probed port of a host.
type PortXML struct {
	PortID   string       `xml:"portid,attr"`
	Protocol string       `xml:"protocol,attr"`
	State    []StatusXML  `xml:"state"`
	Service  []ServiceXML `xml:"service"`
}

// ServiceXML is the service detected on a port.
type ServiceXML struct {
	Name string `xml:"name,attr"`
}

// OSMatchXML is an operating system guess.
type OSMatchXML struct {
	Name     string
	Accuracy string
}

// OSClassXML is an operating system classification.
type OSClassXML struct {
	Family string
	Gen    string
}

// OSXML keeps the first osmatch and the first osclass found anywhere below
// an os element. Classes may sit directly under os or inside an osmatch,
// depending on the nmap version that wrote the report.
type OSXML struct {
	Match *OSMatchXML
	Class *OSClassXML
}

// UnmarshalXML walks the os subtree in document order.
func (o *OSXML) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "osmatch":
				if o.Match == nil {
					o.Match = &OSMatchXML{Name: attr(t, "name"), Accuracy: attr(t, "accuracy")}
				}
			case "osclass":
				if o.Class == nil {
					o.Class = &OSClassXML{Family: attr(t, "osfamily"), Gen: attr(t, "osgen")}
				}
			}
		case xml.EndElement:
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
