package config

// HelipadConfig is the root configuration loaded from helipad.toml, overridable
// by environment variables. Component configs (store.Config, lnclient.Config, ...)
// are populated from the relevant sub-struct via copier at startup.
type HelipadConfig struct {
	Lightning struct {
		// LND connection. Empty CLNRPCPath selects LND.
		LNDURL          string `toml:"lnd_url" env:"LND_URL"`
		LNDTLSCert      string `toml:"lnd_tls_cert" env:"LND_TLSCERT" env-default:"~/.lnd/tls.cert"`
		LNDMacaroonPath string `toml:"lnd_macaroon_path" env:"LND_ADMINMACAROON" env-default:"~/.lnd/data/chain/bitcoin/mainnet/admin.macaroon"`

		// CLN connection. A non-empty path selects CLN over LND.
		CLNRPCPath string `toml:"cln_rpc_path" env:"CLN_RPC_PATH"`
	} `toml:"lightning"`

	Store struct {
		Path string `toml:"path" env:"HELIPAD_DB_PATH" env-default:"helipad.db"`
	} `toml:"store"`

	Poller struct {
		BalanceIntervalSeconds int `toml:"balance_interval_seconds" env:"HELIPAD_BALANCE_INTERVAL" env-default:"9"`
		ReconnectBackoffSeconds int `toml:"reconnect_backoff_seconds" env:"HELIPAD_RECONNECT_BACKOFF" env-default:"9"`
		SubscriberBackoffSeconds int `toml:"subscriber_backoff_seconds" env:"HELIPAD_SUBSCRIBER_BACKOFF" env-default:"5"`
		PageSize uint64 `toml:"page_size" env:"HELIPAD_PAGE_SIZE" env-default:"500"`
	} `toml:"poller"`

	HTTP struct {
		ListenAddr string `toml:"listen_addr" env:"HELIPAD_LISTEN_ADDR" env-default:"0.0.0.0:2112"`
	} `toml:"http"`

	PodcastIndex struct {
		CacheSize int `toml:"cache_size" env:"HELIPAD_GUID_CACHE_SIZE" env-default:"1000"`
	} `toml:"podcastindex"`

	Version string `toml:"-"`
}
