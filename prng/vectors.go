package prng

// ThreeFryVector is a known answer for ThreeFry2x32 with 20 rounds.
type ThreeFryVector struct {
	Name    string
	Counter [2]uint32
	Key     [2]uint32
	Want    [2]uint32
}

// PhiloxVector is a known answer for Philox4x32 with 10 rounds.
type PhiloxVector struct {
	Name    string
	Counter [4]uint32
	Key     [2]uint32
	Want    [4]uint32
}

// Reference vectors published with the Random123 library.
var (
	ThreeFryVectors = []ThreeFryVector{
		{
			Name:    "zeros",
			Counter: [2]uint32{0x00000000, 0x00000000},
			Key:     [2]uint32{0x00000000, 0x00000000},
			Want:    [2]uint32{0x6b200159, 0x99ba4efe},
		},
		{
			Name:    "ones",
			Counter: [2]uint32{0xffffffff, 0xffffffff},
			Key:     [2]uint32{0xffffffff, 0xffffffff},
			Want:    [2]uint32{0x1cb996fc, 0xbb002be7},
		},
		{
			Name:    "pi",
			Counter: [2]uint32{0x243f6a88, 0x85a308d3},
			Key:     [2]uint32{0x13198a2e, 0x03707344},
			Want:    [2]uint32{0xc4923a9c, 0x483df7a0},
		},
	}

	PhiloxVectors = []PhiloxVector{
		{
			Name:    "zeros",
			Counter: [4]uint32{0x00000000, 0x00000000, 0x00000000, 0x00000000},
			Key:     [2]uint32{0x00000000, 0x00000000},
			Want:    [4]uint32{0x6627e8d5, 0xe169c58d, 0xbc57ac4c, 0x9b00dbd8},
		},
		{
			Name:    "ones",
			Counter: [4]uint32{0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff},
			Key:     [2]uint32{0xffffffff, 0xffffffff},
			Want:    [4]uint32{0x408f276d, 0x41c83b0e, 0xa20bc7c6, 0x6d5451fd},
		},
		{
			Name:    "pi",
			Counter: [4]uint32{0x243f6a88, 0x85a308d3, 0x13198a2e, 0x03707344},
			Key:     [2]uint32{0xa4093822, 0x299f31d0},
			Want:    [4]uint32{0xd16cfe09, 0x94fdcceb, 0x5001e420, 0x24126ea1},
		},
	}
)
