package enums

// CodePurpose 验证码用途枚举
// - 作为 Redis 键的一部分，保证不同用途的验证码彼此隔离。
type CodePurpose string

const (
	PurposeLogin        CodePurpose = "login"         // 登录
	PurposeRegister     CodePurpose = "register"      // 注册
	PurposePhoneBinding CodePurpose = "phone_binding" // 绑定手机号
)
