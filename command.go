package ps2kbd

// Host commands with a specific response.
const (
	CmdReset    = 0xFF
	CmdIdentify = 0xF2
	CmdSetLEDs  = 0xED
)

// Keyboard responses.
const (
	RespAck      = 0xFA
	RespTestPass = 0xAA
	RespIDHigh   = 0xAB
	RespIDLow    = 0x83
)

var (
	resetReply    = [...]byte{RespAck, RespTestPass}
	identifyReply = [...]byte{RespAck, RespIDHigh, RespIDLow}
	ackReply      = [...]byte{RespAck}
)

// Reply returns the bytes sent back for a host command. Every byte that
// is not reset or identify, including LED data following 0xED, is simply
// acknowledged.
func Reply(cmd byte) []byte {
	switch cmd {
	case CmdReset:
		return resetReply[:]
	case CmdIdentify:
		return identifyReply[:]
	}
	return ackReply[:]
}

// ProcessCommand handles at most one byte received from the host and
// queues its reply. ok is false when nothing was waiting.
func (k *Keyboard) ProcessCommand() (cmd byte, ok bool) {
	k.lock.Lock()
	cmd, ok = k.in.Pop()
	if ok {
		for _, b := range Reply(cmd) {
			k.out.Push(b)
		}
	}
	k.lock.Unlock()

	if ok && debug {
		println("ps2kbd: host command", cmd)
	}
	return cmd, ok
}
