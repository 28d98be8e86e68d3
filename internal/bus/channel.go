package bus

// Channel names the origin or destination of a message.
type Channel string

const (
	ChannelMessenger Channel = "messenger"
	ChannelConsole   Channel = "console" // local `query` sessions
)
