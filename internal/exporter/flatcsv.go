package exporter

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
)

// WriteFlatCSV пишет записи как простой CSV: заголовок "cidr,country"
// и по строке на запись в порядке lookup. Поля не экранируются:
// значения CIDR и кодов стран не содержат разделителя.
func WriteFlatCSV(w io.Writer, records []domain.AddressRecord) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, "cidr,country"); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, "%s,%s\n", rec.CIDR, rec.Country); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	return bw.Flush()
}
