package constants

// 课程学习进度常量
const (
	EntitlementProgressStarted = "started"
)

// 推广佣金结算状态常量
const (
	AffiliatePayoutStatusPending   = "pending"
	AffiliatePayoutStatusPaid      = "paid"
	AffiliatePayoutStatusCancelled = "cancelled"
)

// 支付回调事件处理状态常量
const (
	PaymentEventStatusReceived  = "received"
	PaymentEventStatusProcessed = "processed"
	PaymentEventStatusIgnored   = "ignored"
	PaymentEventStatusFailed    = "failed"
)

// 支付提供方常量
const (
	PaymentProviderStripe = "stripe"
)

// Stripe 事件类型常量
const (
	StripeEventCheckoutSessionCompleted = "checkout.session.completed"
	// 延迟到账支付方式（银行转账等）实际到账时发送
	StripeEventCheckoutSessionAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// Checkout Session payment_status 取值
const (
	StripePaymentStatusPaid              = "paid"
	StripePaymentStatusUnpaid            = "unpaid"
	StripePaymentStatusNoPaymentRequired = "no_payment_required"
)

// 结算相关默认值
const (
	DefaultCurrency          = "usd"
	DefaultCommissionRate    = "0.10"
	UnknownCourseTitle       = "Unknown Course"
	CheckoutSessionIDHolder  = "{CHECKOUT_SESSION_ID}"
	CheckoutSuccessPath      = "/checkout?success=true&session_id=" + CheckoutSessionIDHolder
	CheckoutCancelPath       = "/checkout?canceled=true"
	CheckoutMetadataCourseID = "courseId"
	CheckoutMetadataUserID   = "userId"
	CheckoutMetadataReferrer = "referrerId"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 异步任务常量
const (
	QueueDefault             = "default"
	QueueCritical            = "critical"
	TaskEntitlementReconcile = "entitlement:reconcile"
)
