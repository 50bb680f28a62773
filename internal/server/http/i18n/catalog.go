package i18n

var catalog = map[string]map[string]string{
	"en": {
		CodeBadRequest:                   "request body is malformed",
		CodeUnauthorized:                 "authentication required",
		CodeInternal:                     "something went wrong, please try again later",
		"NOT_FOUND":                      "resource not found",
		"CUSTOMER_NOT_FOUND":             "customer profile not found",
		"ORDER_NOT_FOUND":                "order not found",
		"VARIANT_NOT_FOUND":              "product variant not found",
		"PERMISSION_DENIED":              "you are not allowed to perform this action",
		"CONCURRENT_UPDATE":              "the order was changed by someone else, please retry",
		"ALREADY_EXISTS":                 "resource already exists",
		"INVALID_TRANSITION":             "the order cannot move to the requested status",
		"CANCEL_REASON_REQUIRED":         "a cancellation reason is required",
		"INSUFFICIENT_STOCK":             "not enough stock for one of the items",
		"VOUCHER_ALREADY_APPLIED":        "a voucher is already applied to this order",
		"ORDER_NOT_PENDING":              "only pending orders can be changed",
		"EMPTY_CART":                     "your cart is empty",
		"VARIANT_NOT_IN_CART":            "an item is not in your cart",
		"QUANTITY_EXCEEDS_CART":          "requested quantity exceeds the quantity in your cart",
		"INVALID_INPUT":                  "the request contains invalid values",
		"VOUCHER_CODE_NOT_FOUND":         "voucher code does not exist",
		"VOUCHER_NOT_YET_ACTIVE":         "voucher is not active yet",
		"VOUCHER_EXPIRED":                "voucher has expired",
		"VOUCHER_BELOW_MINIMUM_ORDER":    "order total is below the voucher minimum",
		"VOUCHER_GLOBAL_LIMIT_REACHED":   "voucher usage limit reached",
		"VOUCHER_PER_USER_LIMIT_REACHED": "you have already used this voucher the maximum number of times",
		"VOUCHER_ACCESS_DENIED":          "voucher is not available for this account",
	},
	"vi": {
		CodeBadRequest:                   "Yêu cầu không hợp lệ",
		CodeUnauthorized:                 "Vui lòng đăng nhập",
		CodeInternal:                     "Đã có lỗi xảy ra, vui lòng thử lại sau",
		"NOT_FOUND":                      "Không tìm thấy dữ liệu",
		"CUSTOMER_NOT_FOUND":             "Không tìm thấy thông tin khách hàng",
		"ORDER_NOT_FOUND":                "Không tìm thấy đơn hàng",
		"VARIANT_NOT_FOUND":              "Không tìm thấy sản phẩm",
		"PERMISSION_DENIED":              "Bạn không có quyền thực hiện thao tác này",
		"CONCURRENT_UPDATE":              "Đơn hàng vừa được cập nhật, vui lòng thử lại",
		"ALREADY_EXISTS":                 "Dữ liệu đã tồn tại",
		"INVALID_TRANSITION":             "Không thể chuyển đơn hàng sang trạng thái này",
		"CANCEL_REASON_REQUIRED":         "Vui lòng nhập lý do hủy đơn",
		"INSUFFICIENT_STOCK":             "Sản phẩm không đủ số lượng trong kho",
		"VOUCHER_ALREADY_APPLIED":        "Đơn hàng đã được áp dụng mã giảm giá",
		"ORDER_NOT_PENDING":              "Chỉ có thể thay đổi đơn hàng đang chờ xác nhận",
		"EMPTY_CART":                     "Giỏ hàng trống",
		"VARIANT_NOT_IN_CART":            "Sản phẩm không có trong giỏ hàng",
		"QUANTITY_EXCEEDS_CART":          "Số lượng vượt quá số lượng trong giỏ hàng",
		"INVALID_INPUT":                  "Dữ liệu không hợp lệ",
		"VOUCHER_CODE_NOT_FOUND":         "Mã giảm giá không tồn tại",
		"VOUCHER_NOT_YET_ACTIVE":         "Mã giảm giá chưa đến thời gian sử dụng",
		"VOUCHER_EXPIRED":                "Mã giảm giá đã hết hạn",
		"VOUCHER_BELOW_MINIMUM_ORDER":    "Đơn hàng chưa đạt giá trị tối thiểu của mã giảm giá",
		"VOUCHER_GLOBAL_LIMIT_REACHED":   "Mã giảm giá đã hết lượt sử dụng",
		"VOUCHER_PER_USER_LIMIT_REACHED": "Bạn đã dùng hết số lần cho phép của mã giảm giá này",
		"VOUCHER_ACCESS_DENIED":          "Bạn không được phép sử dụng mã giảm giá này",
	},
}
