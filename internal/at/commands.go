package at

// AT command vocabulary for the SIM7600 GPS engine. Wire format is
// case-sensitive and CRLF-terminated; the terminator is appended by Send.
const (
	CmdStartStandalone = "AT+CGPS=1,1"
	CmdStartUEBased    = "AT+CGPS=1,2"
	CmdStartUEAssisted = "AT+CGPS=1,3"
	CmdStop            = "AT+CGPS=0"
	CmdStatus          = "AT+CGPS?"
	CmdInfo            = "AT+CGPSINFO"
)

// OK is the final status line of a successful reply transcript.
const OK = "OK"
