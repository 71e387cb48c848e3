package helper

import "encoding/binary"

func IsLittleEndian() bool {
	s := uint16(0xAAFF)
	b := uint8(s)
	return b == 0xFF
}

// NativeEndian is the byte order the kernel uses for seccomp_data and
// exported sock_filter programs on this host.
func NativeEndian() binary.ByteOrder {
	if IsLittleEndian() {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
