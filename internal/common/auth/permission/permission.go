package permission

type Permission string
