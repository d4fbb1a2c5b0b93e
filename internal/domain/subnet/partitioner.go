package subnet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
)

var ErrInvalidCIDR = errors.New("invalid CIDR")

// SplitPolicy задаёт минимальную длину префикса для IPv4.
// Подсети шире минимума дробятся на равные дочерние подсети минимальной длины.
// Для IPv6 лимит remote API не определён, такие записи проходят без изменений.
type SplitPolicy struct {
	MinIPv4Prefix int // 0 — без ограничения
}

type Partitioner struct {
	policy SplitPolicy
}

func NewPartitioner(policy SplitPolicy) *Partitioner {
	return &Partitioner{policy: policy}
}

// Partition нормализует записи в элементы custom list.
// Порядок входа сохраняется; дочерние подсети идут по возрастанию адресов.
// Некорректный CIDR фатален для всей операции: молчаливый пропуск записи
// нарушил бы гарантию полноты покрытия адресного пространства.
func (p *Partitioner) Partition(records []domain.AddressRecord) ([]domain.Item, error) {
	items := make([]domain.Item, 0, len(records))

	for _, rec := range records {
		pfx, err := netip.ParsePrefix(rec.CIDR)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidCIDR, rec.CIDR, err)
		}
		pfx = pfx.Masked()

		if !pfx.Addr().Is4() || p.policy.MinIPv4Prefix == 0 || pfx.Bits() >= p.policy.MinIPv4Prefix {
			items = append(items, domain.Item{Value: pfx.String(), Label: rec.Country})
			continue
		}

		items = append(items, splitIPv4(pfx, p.policy.MinIPv4Prefix, rec.Country)...)
	}

	return items, nil
}

// splitIPv4 дробит подсеть на 2^(minBits-pfx.Bits()) дочерних подсетей /minBits,
// покрывающих исходный диапазон точно, без пропусков и пересечений.
func splitIPv4(pfx netip.Prefix, minBits int, label string) []domain.Item {
	count := 1 << (minBits - pfx.Bits())
	step := uint32(1) << (32 - minBits)

	a4 := pfx.Addr().As4()
	base := binary.BigEndian.Uint32(a4[:])

	items := make([]domain.Item, 0, count)
	for i := 0; i < count; i++ {
		var child [4]byte
		binary.BigEndian.PutUint32(child[:], base+uint32(i)*step)
		childPfx := netip.PrefixFrom(netip.AddrFrom4(child), minBits)
		items = append(items, domain.Item{Value: childPfx.String(), Label: label})
	}
	return items
}
