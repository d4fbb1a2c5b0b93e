package exporter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
)

// rpzHeader — заголовок NIOS CSV-импорта для responsepolicycnamerecord.
const rpzHeader = "header-responsepolicycnamerecord,fqdn*,_new_fqdn,canonical_name,comment,disabled,parent_zone,ttl,view"

// RPZConfig — параметры RPZ-зоны для CSV-импорта в NIOS.
type RPZConfig struct {
	Zone string
	View string
}

// WriteRPZ пишет записи как NIOS RPZ CSV. FQDN правила — октеты адреса
// в обратном порядке плюс суффикс зоны; canonical_name пустой (NXDOMAIN).
func WriteRPZ(w io.Writer, records []domain.AddressRecord, cfg RPZConfig) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, rpzHeader); err != nil {
		return fmt.Errorf("write rpz header: %w", err)
	}

	parent := reverseLabels(cfg.Zone)
	for _, rec := range records {
		fqdn := reverseLabels(addressPart(rec.CIDR)) + "." + cfg.Zone
		row := fmt.Sprintf("responsepolicycnamerecord,%s,,,Country: %s,False,%s,,%s",
			fqdn, rec.Country, parent, cfg.View)
		if _, err := fmt.Fprintln(bw, row); err != nil {
			return fmt.Errorf("write rpz row: %w", err)
		}
	}

	return bw.Flush()
}

// addressPart отрезает длину префикса от CIDR-нотации.
func addressPart(cidr string) string {
	if i := strings.IndexByte(cidr, '/'); i >= 0 {
		return cidr[:i]
	}
	return cidr
}

// reverseLabels переворачивает порядок меток: "10.0.0.1" -> "1.0.0.10".
func reverseLabels(s string) string {
	labels := strings.Split(s, ".")
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return strings.Join(labels, ".")
}
