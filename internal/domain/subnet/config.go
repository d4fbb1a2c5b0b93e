package subnet

import "github.com/ccmarris/b1td-country-ip-blocking/internal/config"

func PolicyFromConfig(cfg *config.CustomList) SplitPolicy {
	return SplitPolicy{
		MinIPv4Prefix: cfg.MinIPv4Prefix,
	}
}
