package lockmail

type User struct {
	ID          string
	Name        string
	DisplayName string
	Email       string
	Keys        Keys

	UsedSpace int
	MaxSpace  int
	MaxUpload int
}

type KeySalt struct {
	ID      string
	KeySalt string
}
