package email

const (
	subjectQuotePresentedFmt = "Your quote from %s is ready"
	subjectQuoteAcceptedFmt  = "Your %s service is confirmed"
	subjectCadenceFmt        = "Following up from %s"
)
