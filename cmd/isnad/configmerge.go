package main

// mergeStr returns flag if it was explicitly set (non-empty), else cfg.
// Commands that merge .isnad/config.toml under their flag defaults (serve,
// signal) leave these CLI fields without a kong "default" tag so an unset
// flag reads as "" here rather than masking the config value.
func mergeStr(flag, cfg string) string {
	if flag != "" {
		return flag
	}
	return cfg
}

// mergeInt is mergeStr's counterpart for port/ttl-style integer flags.
func mergeInt(flag, cfg int) int {
	if flag != 0 {
		return flag
	}
	return cfg
}
