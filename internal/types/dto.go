package types

type (
	SignupParams struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	LoginParams struct {
		Login    string `json:"login" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	AuthResponse struct {
		UserID   uint   `json:"userId"`
		Username string `json:"username"`
		Token    string `json:"token"`
	}

	CreateDashboardParams struct {
		URL    string `json:"dashboardUrl" validate:"required,min=2,max=64,slug"`
		Title  string `json:"title" validate:"max=255"`
		Layout string `json:"layout" validate:"omitempty,max=255"`
	}

	UpdateDashboardParams struct {
		URL             *string `json:"dashboardUrl" validate:"omitempty,min=2,max=64,slug"`
		Title           *string `json:"title" validate:"omitempty,max=255"`
		ThumbnailURL    *string `json:"thumbnailUrl" validate:"omitempty,url"`
		Layout          *string `json:"layout" validate:"omitempty,max=255"`
		BackgroundStyle *string `json:"backgroundStyle" validate:"omitempty,max=255"`
	}

	SectionParams struct {
		Title        string `json:"title" validate:"max=255"`
		Color        string `json:"color" validate:"max=50"`
		Content      string `json:"content"`
		OrderNum     int    `json:"orderNum"`
		ThumbnailURL string `json:"thumbnailUrl" validate:"omitempty,url"`
	}

	ReplaceSectionsParams struct {
		Sections []SectionParams `json:"sections" validate:"dive"`
	}

	IssueTokenParams struct {
		CustomDomain      string `json:"customDomain"`
		VerificationToken string `json:"verificationToken"`
	}
)
