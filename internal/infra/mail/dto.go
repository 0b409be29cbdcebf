package mail

type ConfirmationEmailData struct {
	Name        string
	Datetime    string
	ServiceType string
	ClinicName  string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
