package dto

// ContactRequest is the public contact form
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=200" example:"Jan Kowalski"`
	Email   string `json:"email" validate:"required,max=255" example:"jan@example.com"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=32" example:"+48 880 118 995"`
	Subject string `json:"subject,omitempty" validate:"omitempty,max=200" example:"Sprzątanie biura"`
	Message string `json:"message" validate:"required" example:"Proszę o wycenę sprzątania biura 80 m2."`
}
