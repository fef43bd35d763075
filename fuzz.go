package bmf

func Fuzz(data []byte) int {
	f, err := NewBytes(data, nil)
	if err != nil {
		return 0
	}
	err = f.Parse()
	if err != nil {
		return 0
	}
	return 1
}
