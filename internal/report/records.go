package report

// HostRecord is one row of the hosts table. Optional fields hold "" when the
// report does not carry them.
type HostRecord struct {
	IP          string `db:"ip"`
	AddressType string `db:"protocol"`
	MAC         string `db:"mac"`
	MACVendor   string `db:"mac_vendor"`
	Hostname    string `db:"hostname"`
	State       string `db:"state"`
	OSName      string `db:"os_name"`
	OSAccuracy  string `db:"os_accuracy"`
	OSFamily    string `db:"os_family"`
	OSGen       string `db:"os_gen"`
	LastUpdate  string `db:"last_update"`
}

// Values returns the record in hosts column order.
func (h HostRecord) Values() []any {
	return []any{
		h.IP,
		h.MAC,
		h.Hostname,
		h.AddressType,
		h.OSName,
		h.OSFamily,
		h.OSAccuracy,
		h.OSGen,
		h.LastUpdate,
		h.State,
		h.MACVendor,
	}
}

// PortRecord is one row of the ports table.
type PortRecord struct {
	IP          string `db:"ip"`
	PortNumber  string `db:"port"`
	Protocol    string `db:"protocol"`
	ServiceName string `db:"name"`
	State       string `db:"state"`
}

// Values returns the record in ports column order, without the reserved
// trailing column.
func (p PortRecord) Values() []any {
	return []any{
		p.IP,
		p.PortNumber,
		p.Protocol,
		p.ServiceName,
		p.State,
	}
}

// Entry pairs a host with the ports observed on it.
type Entry struct {
	Host  HostRecord
	Ports []PortRecord
}
