package npm

type (
	tokenRequest struct {
		Identity string `json:"identity"`
		Secret   string `json:"secret"`
	}

	tokenResponse struct {
		Token   string `json:"token"`
		Expires string `json:"expires"`
	}

	ProxyHostRequest struct {
		DomainNames    []string `json:"domain_names"`
		ForwardScheme  string   `json:"forward_scheme"`
		ForwardHost    string   `json:"forward_host"`
		ForwardPort    int      `json:"forward_port"`
		AdvancedConfig string   `json:"advanced_config,omitempty"`
	}

	errorResponse struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
)
