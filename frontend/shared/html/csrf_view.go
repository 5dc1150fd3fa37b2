package html

// CSRFCookieName is the double-submit cookie read by CSRFFormScript and
// checked by the server middleware.
const CSRFCookieName = "X-CSRF-Token"

// CSRFFormField is the hidden form field carrying the token.
const CSRFFormField = "_csrf"

// CSRFFormScript copies the CSRF cookie into every POST form on the page,
// including the multipart upload form, right before it is submitted.
func CSRFFormScript() string {
	return `<script>
(function () {
  var cookieName = "` + CSRFCookieName + `";
  var fieldName = "` + CSRFFormField + `";

  function readToken() {
    var parts = document.cookie ? document.cookie.split(";") : [];
    for (var i = 0; i < parts.length; i++) {
      var c = parts[i].trim();
      if (c.indexOf(cookieName + "=") === 0) {
        return decodeURIComponent(c.substring(cookieName.length + 1));
      }
    }
    return "";
  }

  document.addEventListener("submit", function (ev) {
    var form = ev.target;
    if (!form || (form.getAttribute("method") || "GET").toUpperCase() !== "POST") return;
    var token = readToken();
    if (!token) return;
    var input = form.querySelector("input[name='" + fieldName + "']");
    if (!input) {
      input = document.createElement("input");
      input.type = "hidden";
      input.name = fieldName;
      form.appendChild(input);
    }
    input.value = token;
  }, true);
})();
</script>`
}
