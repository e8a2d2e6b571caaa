package httpapi

// User-facing Persian messages carried in the envelope Message array.
const (
	msgOTPSent            = "کد ورود برای شما پیامک شد"
	msgInvalidPhone       = "شماره موبایل وارد شده معتبر نیست"
	msgResendNotAllowed   = "کد ورود قبلا ارسال شده است؛ لطفا کمی صبر کنید"
	msgInvalidCode        = "کد وارد شده صحیح نیست یا منقضی شده است"
	msgInvalidCredentials = "شماره موبایل یا رمز عبور اشتباه است"
	msgPushTokenRequired  = "توکن اعلان الزامی است"
	msgPushTokenSaved     = "توکن اعلان ثبت شد"
	msgUnauthorized       = "برای دسترسی ابتدا وارد شوید"
	msgForbidden          = "دسترسی غیرمجاز"
	msgBadRequest         = "درخواست نامعتبر است"
	msgServerError        = "خطایی رخ داده است؛ لطفا دوباره تلاش کنید"
)
