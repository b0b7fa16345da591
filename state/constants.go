package state

var (
	ConfigPath = "router.yaml"
)

// debug flags, toggled by cli
var (
	DBG_log_route_table = false
	DBG_log_messages    = false
)

// MaxDatagramSize bounds a single control message on the wire.
const MaxDatagramSize = 65535
