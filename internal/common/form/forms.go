package form

// Field rules follow the catalog's HTML forms. Passwords keep surrounding
// whitespace.

type Login struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password,raw" validate:"required"`
}

type Register struct {
	Username string `form:"username" validate:"required,min=3,max=150"`
	Password string `form:"password,raw" validate:"required,min=6,maxbytes=72"`
	Confirm  string `form:"confirm,raw" validate:"required,eqfield=Password"`
}

type Album struct {
	Title       string `form:"title" validate:"required,min=1,max=200"`
	Description string `form:"description" validate:"max=500"`
	ReleaseDate string `form:"release_date" validate:"required,datetime=2006-01-02"`
	CoverImage  string `form:"cover_image" validate:"omitempty,max=200,url"`
}

// UserEdit leaves the password unchanged when it is blank.
type UserEdit struct {
	Username string `form:"username" validate:"required,min=3,max=150"`
	Password string `form:"password,raw" validate:"omitempty,min=6,maxbytes=72"`
	Confirm  string `form:"confirm,raw" validate:"eqfield=Password"`
}
